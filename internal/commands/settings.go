package commands

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"waiwaier/internal/notes"
	"waiwaier/internal/prompts"
	"waiwaier/internal/schema"
)

func registerSettingsCmd(parent *cobra.Command, a *app) {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change which note parameters are exported",
	}
	registerSettingsShowCmd(cmd, a)
	registerSettingsEditCmd(cmd, a)
	registerSettingsResetCmd(cmd, a)
	parent.AddCommand(cmd)
}

func (a *app) settingsPath() (string, error) {
	if a.cfg.Settings == "" {
		return "", errors.New("no settings file configured (use --settings)")
	}
	return a.cfg.Settings, nil
}

func registerSettingsShowCmd(parent *cobra.Command, a *app) {
	parent.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective output settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.settingsPath()
			if err != nil {
				return err
			}
			s, err := schema.LoadSettings(path)
			if err != nil {
				return err
			}
			if s == nil {
				prompts.Warn(a.out, "no saved settings; only verified keys are exported")
			}
			w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			for _, key := range settingsKeys(s) {
				on := "off"
				if notes.MayEmit(key, s) {
					on = "on"
				}
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", key, on, prompts.StatusBadge(notes.StatusOf(key)))
			}
			return w.Flush()
		},
	})
}

// settingsKeys lists registry keys in display order, then any extra keys
// found in s.
func settingsKeys(s schema.Settings) []string {
	seen := map[string]bool{}
	var keys []string
	for _, p := range notes.Registry() {
		keys = append(keys, p.Key)
		seen[p.Key] = true
	}
	var extra []string
	for k := range s {
		if !seen[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return append(keys, extra...)
}

type settingsEditOptions struct {
	enable  []string
	disable []string
}

func registerSettingsEditCmd(parent *cobra.Command, a *app) {
	opts := &settingsEditOptions{}
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Choose the exported note parameters",
		Long: `Without flags an interactive form is shown. With --enable/--disable the
saved settings are changed without prompting.`,
		Example: `  waiwaier settings edit
  waiwaier settings edit --enable IsLabel,Description --disable IsKey`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSettingsEdit(a, opts)
		},
	}
	cmd.Flags().StringSliceVar(&opts.enable, "enable", nil, "Keys to turn on")
	cmd.Flags().StringSliceVar(&opts.disable, "disable", nil, "Keys to turn off")
	parent.AddCommand(cmd)
}

func runSettingsEdit(a *app, opts *settingsEditOptions) error {
	path, err := a.settingsPath()
	if err != nil {
		return err
	}
	current, err := schema.LoadSettings(path)
	if err != nil {
		return err
	}

	var next schema.Settings
	if len(opts.enable) == 0 && len(opts.disable) == 0 {
		var selected []string
		if err := prompts.RunSettingsForm(current, &selected); err != nil {
			return err
		}
		next = settingsFromSelection(selected)
	} else {
		next = applySettingsChanges(current, opts.enable, opts.disable)
	}

	if err := schema.SaveSettings(path, next); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	prompts.PrintResult(a.out, []prompts.ResultField{
		{Label: "File", Value: path},
		{Label: "Enabled", Value: strings.Join(enabledKeys(next), ", ")},
	}, "Settings saved")
	return nil
}

// settingsFromSelection turns a selection into an explicit map over every
// registry key.
func settingsFromSelection(selected []string) schema.Settings {
	s := make(schema.Settings)
	for _, p := range notes.Registry() {
		s[p.Key] = false
	}
	for _, k := range selected {
		s[k] = true
	}
	return s
}

// applySettingsChanges starts from the effective settings, so a first edit
// keeps the verified keys on.
func applySettingsChanges(current schema.Settings, enable, disable []string) schema.Settings {
	next := make(schema.Settings)
	for _, p := range notes.Registry() {
		next[p.Key] = notes.MayEmit(p.Key, current)
	}
	for k, v := range current {
		next[k] = v
	}
	for _, k := range enable {
		if k = strings.TrimSpace(k); k != "" {
			next[k] = true
		}
	}
	for _, k := range disable {
		if k = strings.TrimSpace(k); k != "" {
			next[k] = false
		}
	}
	return next
}

func enabledKeys(s schema.Settings) []string {
	var out []string
	for _, k := range settingsKeys(s) {
		if s[k] {
			out = append(out, k)
		}
	}
	return out
}

func registerSettingsResetCmd(parent *cobra.Command, a *app) {
	parent.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Restore the default output settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.settingsPath()
			if err != nil {
				return err
			}
			defaults := notes.DefaultOutputSettings()
			if err := schema.SaveSettings(path, defaults); err != nil {
				return fmt.Errorf("save settings: %w", err)
			}
			prompts.PrintResult(a.out, []prompts.ResultField{
				{Label: "File", Value: path},
				{Label: "Enabled", Value: strings.Join(enabledKeys(defaults), ", ")},
			}, "Settings reset")
			return nil
		},
	})
}
