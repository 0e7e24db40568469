package vault

// Settings is the password-generation policy persisted with the vault. The
// core stores it without interpreting it.
type Settings struct {
	PasswordLength    uint8 `json:"passwordLength"`
	MinPasswordLength uint8 `json:"minPasswordLength"`
	UseNumbers        bool  `json:"useNum"`
	MinNumbers        uint8 `json:"minNum"`
	UseSymbols        bool  `json:"useSymbol"`
	MinSymbols        uint8 `json:"minSymbol"`
	UseLower          bool  `json:"useLower"`
	UseUpper          bool  `json:"useUpper"`
}

// DefaultSettings returns the settings a new vault starts with.
func DefaultSettings() Settings {
	return Settings{
		PasswordLength:    14,
		MinPasswordLength: 10,
		UseNumbers:        true,
		MinNumbers:        2,
		UseSymbols:        true,
		MinSymbols:        2,
		UseLower:          true,
		UseUpper:          true,
	}
}
