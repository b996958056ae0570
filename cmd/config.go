package cmd

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kamal-hamza/tmedia/pkg/config"
	"github.com/kamal-hamza/tmedia/pkg/ui"
)

var configJSON bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Edit the tmedia configuration file",
	Long: `Open the configuration file in $EDITOR, creating it with defaults first if
it does not exist. Every key can also be set through a TMEDIA_* environment
variable, which wins over the file.`,
	RunE: runConfigEdit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(configPath())
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value and save the file.

Examples:
  tmedia config set tracker_url https://tracker.example.org
  tmedia config set search_limit 50`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	configShowCmd.Flags().BoolVar(&configJSON, "json", false, "Output as JSON")

	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func runConfigEdit(cmd *cobra.Command, args []string) error {
	path := configPath()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := config.DefaultConfig().Save(path); err != nil {
			return err
		}
		fmt.Println(ui.FormatSuccess("Created default config: " + path))
	}

	fmt.Println(ui.FormatInfo("Opening config: " + path))

	c := exec.Command(GetPreferredEditor(), path)
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	return c.Run()
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	shown := *appConfig
	if shown.SessionID != "" {
		shown.SessionID = "********"
	}

	if configJSON {
		return printJSON(shown)
	}

	data, err := yaml.Marshal(&shown)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	fmt.Println(ui.FormatMuted("# " + configPath()))
	out := string(data)
	if isTerminal(os.Stdout) {
		out = ui.Highlight(out, "yaml")
	}
	fmt.Print(out)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	fileConfig, err := config.LoadFile(configPath())
	if err != nil {
		return err
	}
	if err := fileConfig.Set(args[0], args[1]); err != nil {
		return err
	}
	if err := fileConfig.Save(configPath()); err != nil {
		return err
	}
	fmt.Println(ui.FormatSuccess(fmt.Sprintf("Set %s", args[0])))
	return nil
}
