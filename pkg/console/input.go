package console

import "github.com/charmbracelet/huh"

// PromptVariable asks for a single template variable's value, pre-filling
// the input with a remembered default (from history) when one exists, the
// same huh.NewForm/WithAccessible pattern ConfirmAction and Select use.
// name is the full identifier as it appears in the template, e.g. "_topic".
func PromptVariable(name, defaultValue string) (string, error) {
	value := defaultValue
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(name).
				Value(&value),
		),
	).WithAccessible(isAccessibleMode())

	if err := form.Run(); err != nil {
		return "", err
	}
	return value, nil
}

// PromptTrust renders the TrustPreview confirmation, returning whether
// the fetch is allowed and whether the host should be remembered for
// future runs.
func PromptTrust(host, command, metadataSummary, bodyPreview string) (allow bool, remember bool, err error) {
	allow, err = ConfirmAction(
		"Untrusted host "+host+" ("+command+"): "+metadataSummary+"\n\n"+bodyPreview,
		"Allow",
		"Deny",
	)
	if err != nil || !allow {
		return allow, false, err
	}
	remember, err = ConfirmAction("Remember this host for future runs?", "Yes", "No")
	return allow, remember, err
}
