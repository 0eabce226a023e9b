package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/meur/guideforge/internal/config"
	"github.com/meur/guideforge/internal/doc"
	"github.com/meur/guideforge/internal/editor"
	"github.com/meur/guideforge/internal/models"
	"github.com/meur/guideforge/internal/refdata"
	"github.com/meur/guideforge/internal/schema"
	"github.com/meur/guideforge/internal/storage"
	"github.com/meur/guideforge/internal/szgf"
	"github.com/spf13/cobra"
)

func newNewCmd(opts *globalOptions) *cobra.Command {
	var (
		out       string
		author    string
		character string
		rarity    int
		date      string
	)
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Write a new guide with default content",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			today := time.Now()
			if date != "" {
				t, err := time.Parse(models.DateLayout, date)
				if err != nil {
					return fmt.Errorf("--date: %w", err)
				}
				today = t
			}
			if rarity != 4 && rarity != 5 {
				return fmt.Errorf("--rarity must be 4 or 5, got %d", rarity)
			}

			s, err := editor.NewSession("cli", nil)
			if err != nil {
				return err
			}
			if err := s.Reset(today); err != nil {
				return err
			}
			fields := []struct {
				path  doc.Path
				value any
			}{
				{models.PathAuthor, author},
				{models.PathCharacterName, character},
				{models.PathCharacterRarity, rarity},
			}
			for _, f := range fields {
				if err := s.Set(f.path, f.value); err != nil {
					return err
				}
			}
			text, err := s.Preview()
			if err != nil {
				return err
			}

			if out == "" {
				out = szgf.Filename(character)
			}
			if _, err := os.Stat(out); err == nil {
				return fmt.Errorf("%s already exists", out)
			}
			if err := os.WriteFile(out, text, 0o644); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			for _, msg := range s.Errors() {
				fmt.Fprintf(cmd.ErrOrStderr(), "note: %s\n", msg)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default <character>.yml)")
	cmd.Flags().StringVar(&author, "author", "", "guide author")
	cmd.Flags().StringVar(&character, "character", "", "character name")
	cmd.Flags().IntVar(&rarity, "rarity", 5, "character rarity (4 or 5)")
	cmd.Flags().StringVar(&date, "date", "", "last updated date, YYYY-MM-DD (default today)")
	return cmd
}

func newFmtCmd(opts *globalOptions) *cobra.Command {
	var check bool
	cmd := &cobra.Command{
		Use:   "fmt [--check] file...",
		Short: "Rewrite guides in canonical form",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := false
			for _, path := range args {
				raw, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				d, err := szgf.Deserialize(raw)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
					failed = true
					continue
				}
				text, err := szgf.Serialize(d)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				if bytes.Equal(raw, text) {
					continue
				}
				if check {
					fmt.Fprintln(cmd.OutOrStdout(), path)
					failed = true
					continue
				}
				if err := os.WriteFile(path, text, 0o644); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "formatted %s\n", path)
			}
			if failed {
				return errProblems
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "list files that are not formatted and exit non-zero")
	return cmd
}

type schemaFlags struct {
	ref     string
	offline bool
}

func (f *schemaFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.ref, "schema", config.DefaultSchemaURL, "schema URL or local file")
	cmd.Flags().BoolVar(&f.offline, "offline", false, "only run the required-field checks")
}

// validator returns a loaded validator, or an unloaded one when offline. A
// remote schema that cannot be fetched is reported on stderr and the
// required-field checks run on their own.
func (f *schemaFlags) validator(ctx context.Context, opts *globalOptions, stderr io.Writer) (*schema.Validator, error) {
	log := opts.logger()
	if f.offline {
		return schema.New(f.ref, nil, log), nil
	}
	if !strings.HasPrefix(f.ref, "http://") && !strings.HasPrefix(f.ref, "https://") {
		raw, err := os.ReadFile(f.ref)
		if err != nil {
			return nil, err
		}
		v := schema.New(f.ref, nil, log)
		if err := v.LoadBytes(raw); err != nil {
			return nil, fmt.Errorf("%s: %w", f.ref, err)
		}
		return v, nil
	}
	v := schema.New(f.ref, &http.Client{Timeout: opts.timeout}, log)
	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()
	if err := v.Load(ctx); err != nil {
		log.Warn("schema unavailable, running required-field checks only", "url", f.ref, "error", err)
		fmt.Fprintf(stderr, "warning: %v; only required fields are checked\n", err)
	}
	return v, nil
}

func newValidateCmd(opts *globalOptions) *cobra.Command {
	flags := &schemaFlags{}
	cmd := &cobra.Command{
		Use:   "validate [--schema url|path] [--offline] file...",
		Short: "Check guides against the required fields and the schema",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := flags.validator(cmd.Context(), opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			failed := false
			for _, path := range args {
				raw, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				d, err := szgf.Deserialize(raw)
				if err != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", path, err)
					failed = true
					continue
				}
				for _, msg := range v.Validate(d) {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", path, msg)
					failed = true
				}
			}
			if failed {
				return errProblems
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newExportCmd(opts *globalOptions) *cobra.Command {
	var dir string
	flags := &schemaFlags{}
	cmd := &cobra.Command{
		Use:   "export [-o dir] file",
		Short: "Validate a guide and write it as <character>.yml",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := flags.validator(cmd.Context(), opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			s, err := editor.NewSession("cli", v)
			if err != nil {
				return err
			}
			if err := s.Import(raw); err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			exp, err := s.Export()
			if err != nil {
				var ve *editor.ValidationError
				if errors.As(err, &ve) {
					for _, msg := range ve.Messages {
						fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", args[0], msg)
					}
					return errProblems
				}
				return err
			}
			out := filepath.Join(dir, exp.Filename)
			if err := os.WriteFile(out, exp.Content, 0o644); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "output", "o", ".", "output directory")
	flags.register(cmd)
	return cmd
}

func newRefdataCmd(opts *globalOptions) *cobra.Command {
	var (
		search  string
		limit   int
		baseURL string
		iconURL string
	)
	cmd := &cobra.Command{
		Use:       "refdata <characters|weapons|equipment>",
		Short:     "List picker entries from the reference data API",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(models.KindCharacter), string(models.KindWeapon), string(models.KindEquipment)},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := models.ParseReferenceKind(args[0])
			if err != nil {
				return err
			}
			store, err := storage.New(storage.MemoryPath)
			if err != nil {
				return err
			}
			defer store.Close()

			log := opts.logger()
			client := refdata.NewClient(baseURL, iconURL, &http.Client{Timeout: opts.timeout}, log)
			catalog := refdata.NewCatalog(client, store, log)

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()
			list, err := catalog.Search(ctx, kind, search, limit)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, e := range list.Items {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", e.ID, e.Name, e.Rank, e.IconURL)
			}
			if len(list.Items) < list.TotalCount {
				fmt.Fprintf(cmd.ErrOrStderr(), "%d of %d shown\n", len(list.Items), list.TotalCount)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "only names containing this text")
	cmd.Flags().IntVar(&limit, "limit", refdata.DefaultLimit, "maximum entries to list")
	cmd.Flags().StringVar(&baseURL, "base-url", config.DefaultRefdataURL, "reference data API")
	cmd.Flags().StringVar(&iconURL, "icon-url", config.DefaultIconURL, "icon URL template")
	return cmd
}
