package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Hussein-Mazeh/PasswordVault/internal/service"
	"github.com/Hussein-Mazeh/PasswordVault/internal/vault"
	"github.com/Hussein-Mazeh/PasswordVault/krypto"
)

func (a *app) addCmd() *cobra.Command {
	var (
		username, url, notes, category string
		favorite, generate             bool
	)
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.unlockedService()
			if err != nil {
				return err
			}
			defer svc.Close()

			var secret string
			if generate {
				if secret, err = svc.GeneratePassword(); err != nil {
					return err
				}
			} else {
				pw, err := a.promptNewPassword("Entry password (empty for none): ")
				if err != nil {
					return err
				}
				secret = string(pw)
				krypto.Wipe(pw)
			}

			d := vault.DecryptedEntry{
				Title:    args[0],
				Username: vault.StringPtr(username),
				Password: vault.StringPtr(secret),
				URL:      vault.StringPtr(url),
				Notes:    vault.StringPtr(notes),
				Category: vault.StringPtr(category),
				Favorite: favorite,
			}
			id, err := svc.Add(d)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, color.GreenString("✓"), "added", id)
			if generate {
				fmt.Fprintln(a.out, "password:", secret)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&username, "user", "u", "", "username")
	f.StringVar(&url, "url", "", "site url")
	f.StringVar(&notes, "notes", "", "free-form notes")
	f.StringVarP(&category, "category", "c", "", "category")
	f.BoolVar(&favorite, "favorite", false, "mark as favorite")
	f.BoolVarP(&generate, "generate", "g", false, "generate the password from the vault settings")
	return cmd
}

func (a *app) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show an entry with its password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.unlockedService()
			if err != nil {
				return err
			}
			defer svc.Close()

			d, err := svc.Get(args[0])
			if err != nil {
				return err
			}
			defer d.Wipe()

			tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "id\t%s\n", d.ID)
			fmt.Fprintf(tw, "title\t%s\n", d.Title)
			fmt.Fprintf(tw, "username\t%s\n", value(d.Username))
			fmt.Fprintf(tw, "password\t%s\n", value(d.Password))
			fmt.Fprintf(tw, "url\t%s\n", value(d.URL))
			fmt.Fprintf(tw, "category\t%s\n", value(d.Category))
			fmt.Fprintf(tw, "notes\t%s\n", value(d.Notes))
			fmt.Fprintf(tw, "favorite\t%t\n", d.Favorite)
			fmt.Fprintf(tw, "created\t%s\n", d.CreationDate)
			return tw.Flush()
		},
	}
}

func (a *app) listCmd() *cobra.Command {
	var favorites, categories bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.openService()
			if err != nil {
				return err
			}
			defer svc.Close()

			if categories {
				for _, c := range svc.Categories() {
					fmt.Fprintln(a.out, c)
				}
				return nil
			}
			items := svc.List()
			if favorites {
				items = svc.Favorites()
			}
			return a.printItems(items)
		},
	}
	cmd.Flags().BoolVar(&favorites, "favorites", false, "only favorites")
	cmd.Flags().BoolVar(&categories, "categories", false, "list categories instead of entries")
	return cmd
}

func (a *app) searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <term>",
		Short: "Find entries by title or url",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.openService()
			if err != nil {
				return err
			}
			defer svc.Close()
			return a.printItems(svc.Search(args[0]))
		},
	}
}

func (a *app) rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.unlockedService()
			if err != nil {
				return err
			}
			defer svc.Close()

			if err := svc.Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintln(a.out, color.GreenString("✓"), "deleted", args[0])
			return nil
		},
	}
}

func (a *app) printItems(items []service.ListItem) error {
	if len(items) == 0 {
		fmt.Fprintln(a.out, "no entries")
		return nil
	}
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tUSERNAME\tURL\tCATEGORY\t")
	for _, it := range items {
		star := ""
		if it.Favorite {
			star = "*"
		}
		fmt.Fprintf(tw, "%s\t%s%s\t%s\t%s\t%s\t\n", it.ID, it.Title, star, it.Username, it.URL, it.Category)
	}
	return tw.Flush()
}

func value(p *string) string {
	if p == nil {
		return "-"
	}
	return *p
}
