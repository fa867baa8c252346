package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"fintrack/internal/services"
	"fintrack/internal/storage"
)

// fintrack-init prepares a database file: it runs the schema migrations and,
// when an admin user is requested, creates the first account.
func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("fintrack-init", flag.ContinueOnError)
	fs.SetOutput(stderr)

	dbPath := fs.String("db", "./data/fintrack.db", "Path to database file")
	adminUser := fs.String("admin-user", "", "Create an initial account with this username (optional)")
	adminEmail := fs.String("admin-email", "", "Email for the initial account")

	if err := fs.Parse(args); err != nil {
		return err
	}

	// Opening the repository runs the migrations.
	repo, err := storage.NewSQLiteRepository(*dbPath)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer repo.Close()

	fmt.Fprintf(stdout, "Database ready at %s\n", *dbPath)

	if *adminUser == "" {
		return nil
	}
	if *adminEmail == "" {
		return fmt.Errorf("missing required flag: admin-email")
	}

	fmt.Fprint(stdout, "Password: ")
	password, err := readPassword(stdin)
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Fprintln(stdout)

	if strings.TrimSpace(password) == "" {
		return fmt.Errorf("password cannot be empty")
	}

	authSvc := services.NewAuthService(repo, 0)
	user, err := authSvc.Register(context.Background(), *adminUser, *adminEmail, password)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	fmt.Fprintf(stdout, "User %s created successfully with ID %d\n", user.Username, user.ID)
	return nil
}

func readPassword(stdin io.Reader) (string, error) {
	// Check if stdin is a terminal
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bytePassword, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(bytePassword), nil
	}

	// Fallback for non-terminal (e.g. tests, pipes)
	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
