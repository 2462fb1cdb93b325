package console

import "github.com/charmbracelet/huh"

// SelectOption is one entry in a Select prompt.
type SelectOption struct {
	Label string
	Value string
}

// Select shows an interactive single-choice menu using huh, mirroring
// ConfirmAction's form-building pattern. Returns the chosen option's Value.
func Select(title string, options []SelectOption) (string, error) {
	huhOptions := make([]huh.Option[string], len(options))
	for i, o := range options {
		huhOptions[i] = huh.NewOption(o.Label, o.Value)
	}

	var choice string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(title).
				Options(huhOptions...).
				Value(&choice),
		),
	).WithAccessible(isAccessibleMode())

	if err := form.Run(); err != nil {
		return "", err
	}
	return choice, nil
}
