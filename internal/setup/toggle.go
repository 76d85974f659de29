package setup

// Always returns a predicate that yields enabled for every component
func Always(enabled bool) func(Component) bool {
	return func(Component) bool { return enabled }
}

// MassToggle brings every component in list to the enable state chosen by
// shouldEnable, calling toggle only for components whose state differs. It
// returns the number of toggles issued.
func MassToggle(list []Component, shouldEnable func(Component) bool, toggle func(code string, enabled bool)) int {
	issued := 0
	for _, c := range list {
		want := shouldEnable(c)
		if c.Enabled != want {
			toggle(c.Code, want)
			issued++
		}
	}
	return issued
}
