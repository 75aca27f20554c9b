package stockmaster

const (
	DefaultSearchLimit = 20
	MaxSearchLimit     = 1000
)
