package cmd

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ironspire/navcore/navworld"
)

var configCmd = &cobra.Command{
	Use:   "config [FILE]",
	Short: "write a default runtime config",
	Long: `Write a runtime tunables file in YAML format, prefilled with default
values (graph/action-pack/search/pathbuild/radial/requests sizing).

If FILE is not provided, 'navcore.yml' is used.`,
	Run: runConfig,
}

func init() {
	RootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) {
	path := "navcore.yml"
	if len(args) >= 1 {
		path = args[0]
	}

	ok, err := confirmIfExists(path, fmt.Sprintf("file %s already exists, overwrite? [y/N]", path))
	if err != nil {
		fmt.Println("aborted,", err)
		return
	}
	if !ok {
		fmt.Println("aborted by user")
		return
	}

	f, err := os.Create(path)
	if err != nil {
		fmt.Println("error,", err)
		os.Exit(1)
	}
	defer f.Close()

	if err := (navworld.Config{}).WriteDefault(f); err != nil {
		fmt.Println("error,", err)
		os.Exit(1)
	}
	fmt.Printf("default config written to %q\n", path)
}

func confirmIfExists(path, msg string) (ok bool, err error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, err
	}
	return askForConfirmation(msg), nil
}

func askForConfirmation(msg string) bool {
	fmt.Println(msg)
	reader := bufio.NewReader(os.Stdin)
	for {
		input, err := reader.ReadString('\n')
		if err != nil || len(input) == 0 {
			return false
		}
		switch input[0] {
		case 'Y', 'y':
			return true
		case 'N', 'n', '\n':
			return false
		}
	}
}
