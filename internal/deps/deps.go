package deps

// Status reports whether an external binary reelsmith shells out to is
// usable. Command holds the resolved path when the binary was found.
type Status struct {
	Name        string
	Command     string
	Description string
	Available   bool
	Detail      string
}
