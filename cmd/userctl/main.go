// userctl drives the user-management API from the terminal: the same
// signup/login/profile flows the web forms cover, plus the admin
// listing and per-user actions.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/geocoder89/userhub/pkg/client"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	err := run(ctx, cmd, args)

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd string, args []string) error {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)

	baseURL := fs.String("url", envOr("USERHUB_URL", "http://localhost:8080"), "API base URL")
	token := fs.String("token", os.Getenv("USERHUB_TOKEN"), "bearer token (or USERHUB_TOKEN)")

	switch cmd {
	case "signup":
		name := fs.String("name", "", "full name")
		email := fs.String("email", "", "email address")
		password := fs.String("password", "", "password")
		_ = fs.Parse(args)

		if err := firstErr(
			client.ValidateFullName(*name),
			client.ValidateEmail(*email),
			client.ValidatePassword(*password),
		); err != nil {
			return err
		}

		c := newClient(*baseURL, *token)

		u, err := c.Signup(ctx, *name, *email, *password)
		if err != nil {
			return err
		}

		fmt.Println("account created:", u.Email)
		printToken(c)
		return nil

	case "login":
		email := fs.String("email", "", "email address")
		password := fs.String("password", "", "password")
		_ = fs.Parse(args)

		c := newClient(*baseURL, *token)

		u, err := c.Login(ctx, *email, *password)
		if err != nil {
			return err
		}

		fmt.Println("logged in as:", u.Email, "("+u.Role+")")
		printToken(c)
		return nil

	case "me":
		_ = fs.Parse(args)

		u, err := newClient(*baseURL, *token).Me(ctx)
		if err != nil {
			return err
		}

		printUser(u)
		return nil

	case "update-profile":
		name := fs.String("name", "", "new full name (optional)")
		email := fs.String("email", "", "new email (optional)")
		_ = fs.Parse(args)

		var patch client.ProfilePatch

		if *name != "" {
			if err := client.ValidateFullName(*name); err != nil {
				return err
			}
			patch.FullName = name
		}

		if *email != "" {
			if err := client.ValidateEmail(*email); err != nil {
				return err
			}
			patch.Email = email
		}

		u, err := newClient(*baseURL, *token).UpdateProfile(ctx, patch)
		if err != nil {
			return err
		}

		fmt.Println("profile updated")
		printUser(u)
		return nil

	case "change-password":
		current := fs.String("current", "", "current password")
		next := fs.String("new", "", "new password")
		_ = fs.Parse(args)

		if err := client.ValidatePassword(*next); err != nil {
			return err
		}

		err := newClient(*baseURL, *token).ChangePassword(ctx, *current, *next)
		if err != nil {
			return err
		}

		fmt.Println("password changed")
		return nil

	case "list":
		page := fs.Int("page", 1, "page number")
		limit := fs.Int("limit", 10, "page size")
		search := fs.String("search", "", "substring match on name or email")
		role := fs.String("role", "", "filter by role (user|admin)")
		status := fs.String("status", "", "filter by status (active|inactive)")
		_ = fs.Parse(args)

		users, pagination, err := newClient(*baseURL, *token).ListUsers(ctx, client.ListOptions{
			Page:   *page,
			Limit:  *limit,
			Search: *search,
			Role:   *role,
			Status: *status,
		})
		if err != nil {
			return err
		}

		printUsersTable(users)
		fmt.Printf("page %d/%d, %d total\n", pagination.Page, pagination.Pages, pagination.Total)
		return nil

	case "get":
		id := fs.String("id", "", "user id")
		_ = fs.Parse(args)

		u, err := newClient(*baseURL, *token).GetUser(ctx, *id)
		if err != nil {
			return err
		}

		printUser(u)
		return nil

	case "activate":
		id := fs.String("id", "", "user id")
		_ = fs.Parse(args)

		u, err := newClient(*baseURL, *token).Activate(ctx, *id)
		if err != nil {
			return err
		}

		fmt.Println("activated:", u.Email)
		return nil

	case "deactivate":
		id := fs.String("id", "", "user id")
		yes := fs.Bool("yes", false, "confirm the deactivation")
		_ = fs.Parse(args)

		if !*yes {
			return fmt.Errorf("deactivating locks the account out; re-run with -yes to confirm")
		}

		u, err := newClient(*baseURL, *token).Deactivate(ctx, *id)
		if err != nil {
			return err
		}

		fmt.Println("deactivated:", u.Email)
		return nil

	case "delete":
		id := fs.String("id", "", "user id")
		yes := fs.Bool("yes", false, "confirm the deletion")
		_ = fs.Parse(args)

		if !*yes {
			return fmt.Errorf("deletion is permanent; re-run with -yes to confirm")
		}

		err := newClient(*baseURL, *token).Delete(ctx, *id)
		if err != nil {
			return err
		}

		fmt.Println("deleted:", *id)
		return nil

	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func newClient(baseURL, token string) *client.Client {
	opts := []client.Option{}

	if token != "" {
		opts = append(opts, client.WithToken(token))
	}

	return client.New(baseURL, opts...)
}

func printToken(c *client.Client) {
	fmt.Println("export USERHUB_TOKEN=" + c.Token())
}

func printUser(u client.User) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "id:\t%s\n", u.ID)
	fmt.Fprintf(w, "name:\t%s\n", u.FullName)
	fmt.Fprintf(w, "email:\t%s\n", u.Email)
	fmt.Fprintf(w, "role:\t%s\n", u.Role)
	fmt.Fprintf(w, "status:\t%s\n", u.Status)
	if u.LastLogin != nil {
		fmt.Fprintf(w, "last login:\t%s\n", u.LastLogin.Format(time.RFC3339))
	}
	fmt.Fprintf(w, "created:\t%s\n", u.CreatedAt.Format(time.RFC3339))
	w.Flush()
}

func printUsersTable(users []client.User) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tROLE\tSTATUS")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.FullName, u.Email, u.Role, u.Status)
	}
	w.Flush()
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}

	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: userctl <command> [flags]

commands:
  signup           create an account
  login            authenticate and print a token
  me               show the current identity
  update-profile   change full name or email
  change-password  rotate the password
  list             admin: list users (search/role/status filters)
  get              admin: show one user
  activate         admin: reactivate a user
  deactivate       admin: deactivate a user (-yes to confirm)
  delete           admin: delete a user (-yes to confirm)`)
}
