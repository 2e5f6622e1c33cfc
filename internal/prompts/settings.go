package prompts

import (
	"fmt"

	"github.com/charmbracelet/huh"

	"waiwaier/internal/notes"
	"waiwaier/internal/schema"
)

// RunSettingsForm lets the user pick the note parameters to emit, one
// multi-select per category. The chosen keys are written to selected.
func RunSettingsForm(current schema.Settings, selected *[]string) error {
	cats := notes.Categories()
	picks := make([][]string, len(cats))
	var groups []*huh.Group

	for i, cat := range cats {
		params := notes.ByCategory(cat.ID)
		if len(params) == 0 {
			continue
		}
		options := make([]huh.Option[string], 0, len(params))
		for _, p := range params {
			label := fmt.Sprintf("%s (%s)", p.Key, p.Status)
			on := notes.MayEmit(p.Key, current)
			options = append(options, huh.NewOption(label, p.Key).Selected(on))
		}
		groups = append(groups, huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title(cat.Label).
				Options(options...).
				Value(&picks[i]),
		))
	}

	if err := huh.NewForm(groups...).WithTheme(Theme()).Run(); err != nil {
		return err
	}
	*selected = (*selected)[:0]
	for _, p := range picks {
		*selected = append(*selected, p...)
	}
	return nil
}
