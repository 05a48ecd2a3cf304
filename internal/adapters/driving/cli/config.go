package cli

import (
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View and edit the configuration",
	Long: `Views and edits the config file. Values in the file override the
built-in defaults; command-line flags override both.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Store a config value",
	Long: `Stores a config value. Lists are comma-separated and durations use
Go syntax, for example:

  pdfsift config set recognition.dpi 100,300
  pdfsift config set search.timeout 5m
  pdfsift config set tools.tesseract /opt/homebrew/bin/tesseract`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Remove a stored value so its default applies",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := settingsService()
		if err != nil {
			return err
		}
		if err := svc.Unset(args[0]); err != nil {
			return err
		}
		cmd.Printf("Unset %s\n", args[0])
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, err := settingsService()
		if err != nil {
			return err
		}
		cmd.Println(svc.Path())
		return nil
	},
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List supported config keys",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, err := settingsService()
		if err != nil {
			return err
		}
		for _, k := range svc.Keys() {
			cmd.Println(k)
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetCmd, configUnsetCmd, configPathCmd, configKeysCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	svc, settings, err := loadSettings(nil)
	if err != nil {
		return err
	}

	st := newStyles(cmd.OutOrStdout())
	cmd.Println(st.Muted.Render("# " + svc.Path()))

	cmd.Println(st.Title.Render("[cache]"))
	cmd.Printf("  path:        %s\n", orDefault(settings.CachePath, "(one per directory)"))
	cmd.Printf("  backend:     %s\n", settings.CacheBackend)
	cmd.Printf("  key:         %s\n", settings.KeyMode)

	cmd.Println(st.Title.Render("[recognition]"))
	cmd.Printf("  mode:        %s\n", settings.RecognitionMode.Description())
	cmd.Printf("  dpi:         %s\n", joinInts(settings.DPIs))
	cmd.Printf("  languages:   %s\n", strings.Join(settings.Languages, "+"))
	cmd.Printf("  engines:     %s\n", strings.Join(settings.OCREngines, ", "))

	cmd.Println(st.Title.Render("[textlayer]"))
	cmd.Printf("  engines:     %s\n", strings.Join(settings.TextEngines, ", "))

	cmd.Println(st.Title.Render("[normalise]"))
	cmd.Printf("  alphabet:    %s\n", settings.Alphabet)
	cmd.Printf("  repair:      %s\n", orDefault(strings.Join(settings.Repair, ", "), "(none)"))

	cmd.Println(st.Title.Render("[search]"))
	cmd.Printf("  workers:     %d\n", settings.Workers)
	cmd.Printf("  timeout:     %s\n", settings.Timeout)
	cmd.Printf("  extensions:  %s\n", strings.Join(settings.Extensions, ", "))
	cmd.Printf("  retry_failed: %t\n", settings.RetryFailed)

	cmd.Println(st.Title.Render("[output]"))
	cmd.Printf("  url_prefix:  %s\n", orDefault(settings.URLPrefix, "(none)"))

	cmd.Println(st.Title.Render("[tools]"))
	names := make([]string, 0, len(settings.Tools))
	for name := range settings.Tools {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		cmd.Printf("  %-12s %s\n", name+":", settings.Tools[name])
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	svc, err := settingsService()
	if err != nil {
		return err
	}
	if err := svc.Set(args[0], args[1]); err != nil {
		return err
	}
	cmd.Printf("Set %s = %s\n", args[0], args[1])
	return nil
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}

