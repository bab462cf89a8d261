// Notely CLI - notes, translation and AI assist from the terminal.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/notely/notely/internal/app"
	"github.com/notely/notely/internal/assist"
	"github.com/notely/notely/internal/auth"
	"github.com/notely/notely/internal/config"
	"github.com/notely/notely/internal/core"
	"github.com/notely/notely/internal/logging"
	"github.com/notely/notely/internal/related"
	"github.com/notely/notely/internal/storage"
	"github.com/notely/notely/internal/tagging"
	"github.com/notely/notely/internal/templates"
)

var (
	// Config
	configPath string
	dataDir    string
	userID     string
	verbose    bool

	// Version
	version = "0.1.0"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "nt",
		Short: "Notely - notes with AI assist",
		Long: `Notely keeps your notes and helps with them: summaries, titles,
tags, translations and related notes.

AI features use the configured provider and fall back to offline
heuristics when none is reachable.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := logging.WARN
			if verbose {
				level = logging.DEBUG
			}
			logging.Configure(os.Stderr, level, logging.FormatAuto)
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: <data-dir>/config.json)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default: ~/.notely)")
	rootCmd.PersistentFlags().StringVar(&userID, "user", string(core.LocalUser), "user whose notes to use")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "show provider attempts and debug logs")

	// Commands
	rootCmd.AddCommand(translateCmd())
	rootCmd.AddCommand(assistCmd())
	rootCmd.AddCommand(tagsCmd())
	rootCmd.AddCommand(relatedCmd())
	rootCmd.AddCommand(notesCmd())
	rootCmd.AddCommand(templatesCmd())
	rootCmd.AddCommand(tokenCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" && dataDir != "" {
		path = filepath.Join(dataDir, "config.json")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	return cfg, nil
}

// inputText joins args, or reads stdin when the only arg is "-"
func inputText(args []string) (string, error) {
	if len(args) == 1 && args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	return strings.Join(args, " "), nil
}

// translateCmd runs the translation chain
func translateCmd() *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:   "translate [text]",
		Short: "Translate text into another language",
		Example: `  nt translate "good morning" --to Spanish
  echo "Where is the station?" | nt translate - --to German -v`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			text, err := inputText(args)
			if err != nil {
				return err
			}

			chain := app.NewTranslator(cfg)
			res, err := chain.Translate(cmd.Context(), text, target)

			if verbose && res != nil {
				for _, a := range res.Attempts {
					status := "failed"
					switch {
					case a.Success:
						status = "ok"
					case a.Skipped:
						status = "skipped"
					}
					fmt.Fprintf(os.Stderr, "  %-15s %-8s %s\n", a.Provider, status, a.Error)
				}
			}
			if err != nil {
				return err
			}

			fmt.Println(res.Text)
			return nil
		},
	}

	cmd.Flags().StringVar(&target, "to", "Spanish", "target language name")
	return cmd
}

// assistCmd runs one AI-assist intent
func assistCmd() *cobra.Command {
	var instructions string
	var language string

	cmd := &cobra.Command{
		Use:       "assist [summarize|expand|improve|title|tags|translate] [text]",
		Short:     "Run an AI assist action on text",
		Args:      cobra.MinimumNArgs(2),
		ValidArgs: []string{"summarize", "expand", "improve", "title", "tags", "translate"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			text, err := inputText(args[1:])
			if err != nil {
				return err
			}

			intent := core.Intent(strings.ToLower(args[0]))
			if intent == core.IntentChat {
				return errors.New("chat is only available through the API")
			}

			gateway := app.NewGateway(app.NewRouter(cfg))
			res, err := gateway.Assist(cmd.Context(), intent, text, assistOptions(instructions, language))
			if err != nil {
				return err
			}

			if intent == core.IntentTags {
				fmt.Println(strings.Join(res.Tags, ", "))
			} else {
				fmt.Println(res.Text)
			}
			if verbose {
				fmt.Fprintf(os.Stderr, "provider: %s (fallback: %v)\n", res.Provider, res.Fallback)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&instructions, "instructions", "", "extra guidance for the model")
	cmd.Flags().StringVar(&language, "to", "", "target language for translate")
	return cmd
}

// tagsCmd runs the rule classifier
func tagsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tags [text]",
		Short: "Suggest tags for text using keyword rules",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := inputText(args)
			if err != nil {
				return err
			}
			tags := tagging.AutoTags(text)
			if len(tags) == 0 {
				fmt.Println("(no tags)")
				return nil
			}
			fmt.Println(strings.Join(tags, ", "))
			return nil
		},
	}
}

// relatedCmd lists the notes most similar to one note
func relatedCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "related [note-id]",
		Short: "Show the notes most related to a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeDB, err := openNotes()
			if err != nil {
				return err
			}
			defer closeDB()

			user := core.UserID(userID)
			note, err := store.GetByID(user, core.NoteID(args[0]))
			if err != nil {
				return err
			}

			all, err := store.List(user, core.NoteFilter{})
			if err != nil {
				return err
			}
			candidates := make([]core.Note, 0, len(all))
			for _, n := range all {
				candidates = append(candidates, *n)
			}

			ranked := related.Rank(*note, candidates, limit)
			if len(ranked) == 0 {
				fmt.Println("No other notes.")
				return nil
			}
			for _, r := range ranked {
				fmt.Printf("%.2f  %s  %s\n", r.Score, r.Note.ID, truncate(displayTitle(r.Note), 60))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", related.DefaultLimit, "number of notes to show")
	return cmd
}

// notesCmd groups note commands
func notesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notes",
		Short: "Work with notes",
	}

	var query, tag string
	var limit int
	var archived bool

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List notes, most recently updated first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeDB, err := openNotes()
			if err != nil {
				return err
			}
			defer closeDB()

			notes, err := store.List(core.UserID(userID), core.NoteFilter{
				Query:           query,
				Tag:             tag,
				IncludeArchived: archived,
				Limit:           limit,
			})
			if err != nil {
				return err
			}

			if len(notes) == 0 {
				fmt.Println("No notes found.")
				return nil
			}
			for _, n := range notes {
				fmt.Printf("%s  %s  %-40s  %s\n",
					n.ID, n.UpdatedAt.Local().Format("2006-01-02 15:04"),
					truncate(displayTitle(*n), 40), strings.Join(n.Tags, ","))
			}
			return nil
		},
	}
	listCmd.Flags().StringVarP(&query, "q", "q", "", "search title and content")
	listCmd.Flags().StringVar(&tag, "tag", "", "only notes with this tag")
	listCmd.Flags().IntVar(&limit, "limit", 50, "maximum notes to list")
	listCmd.Flags().BoolVar(&archived, "archived", false, "include archived notes")

	var title string
	var tags []string

	addCmd := &cobra.Command{
		Use:   "add [content]",
		Short: "Create a note",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := inputText(args)
			if err != nil {
				return err
			}

			store, closeDB, err := openNotes()
			if err != nil {
				return err
			}
			defer closeDB()

			note := &core.Note{
				UserID:  core.UserID(userID),
				Title:   title,
				Content: content,
			}
			note.Tags, note.AutoTags = tagging.Reconcile(tags, nil, title+"\n"+content)
			if err := store.Create(note); err != nil {
				return err
			}
			fmt.Println(note.ID)
			return nil
		},
	}
	addCmd.Flags().StringVar(&title, "title", "", "note title")
	addCmd.Flags().StringSliceVar(&tags, "tag", nil, "tags (repeatable)")

	cmd.AddCommand(listCmd)
	cmd.AddCommand(addCmd)
	return cmd
}

// templatesCmd lists templates or prints one
func templatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "templates [id]",
		Short: "List note templates, or print one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog := templates.Builtin()

			if len(args) == 1 {
				tpl, err := catalog.Get(args[0])
				if err != nil {
					return err
				}
				fmt.Print(tpl.Content)
				return nil
			}

			groups := catalog.ByCategory()
			for _, category := range catalog.Categories() {
				fmt.Printf("%s\n", category)
				for _, tpl := range groups[category] {
					fmt.Printf("  %s %-18s %s\n", tpl.Icon, tpl.ID, tpl.Description)
				}
			}
			return nil
		},
	}
}

// tokenCmd mints a development session token
func tokenCmd() *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token [user-id]",
		Short: "Mint a session token for the API (development)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			secret := cfg.Auth.JWTSecret
			if secret == "" {
				if !term.IsTerminal(int(os.Stdin.Fd())) {
					return fmt.Errorf("%w: set NOTELY_AUTH_JWT_SECRET", core.ErrConfigurationMissing)
				}
				fmt.Fprint(os.Stderr, "Auth secret: ")
				raw, err := term.ReadPassword(int(os.Stdin.Fd()))
				fmt.Fprintln(os.Stderr)
				if err != nil {
					return fmt.Errorf("failed to read secret: %w", err)
				}
				secret = strings.TrimSpace(string(raw))
			}

			token, err := auth.Mint(secret, core.UserID(args[0]), ttl)
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}

	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}

// versionCmd shows version info
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Notely %s\n", version)
		},
	}
}

func openNotes() (*storage.NoteStore, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	db, err := app.OpenDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	return storage.NewNoteStore(db), func() { db.Close() }, nil
}

func assistOptions(instructions, language string) assist.Options {
	return assist.Options{Instructions: instructions, TargetLanguage: language}
}

func displayTitle(n core.Note) string {
	if n.Title != "" {
		return n.Title
	}
	return strings.SplitN(n.Content, "\n", 2)[0]
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
