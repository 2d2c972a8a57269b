package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/frahmantamala/shiftboard/internal"
	"github.com/frahmantamala/shiftboard/internal/app"
	"github.com/frahmantamala/shiftboard/internal/auth"
	"github.com/frahmantamala/shiftboard/internal/credential"
	"github.com/frahmantamala/shiftboard/internal/store"
	"github.com/frahmantamala/shiftboard/pkg/logger"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// MethodCLI marks audit entries written by this command.
const MethodCLI = "CLI"

var (
	bootstrapUsername   string
	bootstrapPersonName string
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Create the first admin account",
	Long:  `Create the first admin account from the terminal. Fails once any user exists.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBootstrap(cmd.Context())
	},
}

func init() {
	bootstrapCmd.Flags().StringVarP(&bootstrapUsername, "username", "u", "", "admin username")
	bootstrapCmd.Flags().StringVarP(&bootstrapPersonName, "person-name", "n", "", "admin display name")
	_ = bootstrapCmd.MarkFlagRequired("username")
}

func runBootstrap(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, db, err := openDatabase()
	if err != nil {
		return err
	}
	defer closeDatabase(db)

	if err := store.Migrate(ctx, db); err != nil {
		return err
	}

	application, err := app.New(cfg, db, logger.LoggerWrapper())
	if err != nil {
		return err
	}

	password, err := promptPassword(os.Stdin, os.Stdout)
	if err != nil {
		return err
	}

	personName := bootstrapPersonName
	if personName == "" {
		personName = bootstrapUsername
	}

	ctx = internal.ContextWithRequest(ctx, MethodCLI, "bootstrap")
	resp, err := application.Auth.Bootstrap(ctx, auth.BootstrapDTO{
		Username:           bootstrapUsername,
		PasswordClientHash: credential.ClientPreHash(bootstrapUsername, password),
		PersonName:         personName,
	})
	application.Bus.Wait()
	if err != nil {
		if errors.Is(err, internal.ErrAlreadyInitialized) {
			return fmt.Errorf("bootstrap refused: users already exist")
		}
		return err
	}

	fmt.Printf("admin %q created (id %s)\n", resp.User.Username, resp.User.ID)
	fmt.Printf("session token: %s\nexpires at: %s\n", resp.Token, resp.ExpiresAt)
	return nil
}

// promptPassword reads the password twice without echo on a terminal, or a
// single line from a pipe.
func promptPassword(in *os.File, out io.Writer) (string, error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		password := strings.TrimRight(line, "\r\n")
		if password == "" {
			return "", errors.New("password is required")
		}
		return password, nil
	}

	fmt.Fprint(out, "Password: ")
	first, err := readPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", err
	}
	fmt.Fprint(out, "Confirm password: ")
	second, err := readPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", err
	}

	if len(first) == 0 {
		return "", errors.New("password is required")
	}
	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	return string(first), nil
}
