package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/trezcool/pathways/core/catalog"
	"github.com/trezcool/pathways/core/dashboard"
	"github.com/trezcool/pathways/core/namespace"
	"github.com/trezcool/pathways/core/session"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db       *sqlx.DB // nil unless the storage backend is SQL
	reg      *namespace.Registry
	admins   *dashboard.Controller[catalog.AdminUser]
	sessions *session.Manager
	validate *validator.Validate
	out      io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS]                       - run a goose command (up, down, status...) on the SQL storage")
	fmt.Fprintln(cli.out, "  seed [-force]                                - write the default collections that are missing (all of them with -force)")
	fmt.Fprintln(cli.out, "  keys                                         - list the stored keys")
	fmt.Fprintln(cli.out, "  get -key KEY                                 - print the document stored under KEY")
	fmt.Fprintln(cli.out, "  set -key KEY -file FILE                      - replace the document stored under KEY with the JSON in FILE")
	fmt.Fprintln(cli.out, "  adduser -email EMAIL [-name NAME] [-role R]  - create or update an active admin user")
	fmt.Fprintln(cli.out, "  resetpassword -email EMAIL                   - reset an admin user's password")
	fmt.Fprintln(cli.out, "  purgesessions                                - delete the expired sessions")
}

// promptPassword reads a password without echoing it; an empty password prints usage.
func (cli *commandLine) promptPassword(cmd *flag.FlagSet) (string, error) {
	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	if len(pwd) == 0 {
		cmd.Usage()
		return "", errHelp
	}
	return string(pwd), nil
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	seedCmd := flag.NewFlagSet("seed", flag.ExitOnError)
	seedForce := seedCmd.Bool("force", false, "Overwrite the collections that already exist.")

	getCmd := flag.NewFlagSet("get", flag.ExitOnError)
	getKey := getCmd.String("key", "", "The storage key, eg. app_careers.")

	setCmd := flag.NewFlagSet("set", flag.ExitOnError)
	setKey := setCmd.String("key", "", "The storage key, eg. app_careers.")
	setFile := setCmd.String("file", "", "Path of a JSON document.")

	addUserCmd := flag.NewFlagSet("adduser", flag.ExitOnError)
	addUserEmail := addUserCmd.String("email", "", "The admin's email. The password will be prompted next.")
	addUserName := addUserCmd.String("name", "", "The admin's name (required for new admins).")
	addUserRole := addUserCmd.String("role", "Super Admin", "The admin's role.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ExitOnError)
	resetPasswordEmail := resetPasswordCmd.String("email", "", "The admin's email. The password will be prompted next.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "seed":
		if err := seedCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.seed(*seedForce)
	case "keys":
		return cli.keys()
	case "get":
		if err := getCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *getKey == "" {
			getCmd.Usage()
			return errHelp
		}
		return cli.get(*getKey)
	case "set":
		if err := setCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *setKey == "" || *setFile == "" {
			setCmd.Usage()
			return errHelp
		}
		return cli.set(*setKey, *setFile)
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserEmail == "" {
			addUserCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword(addUserCmd)
		if err != nil {
			return err
		}
		return cli.addUser(*addUserEmail, *addUserName, *addUserRole, pwd)
	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordEmail == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword(resetPasswordCmd)
		if err != nil {
			return err
		}
		return cli.resetPassword(*resetPasswordEmail, pwd)
	case "purgesessions":
		return cli.purgeSessions()
	default:
		cli.printUsage()
		return errHelp
	}
}
