package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ignatzorin/directory-backend/internal/app"
	"github.com/ignatzorin/directory-backend/internal/db"
	"github.com/ignatzorin/directory-backend/internal/models"
	"github.com/ignatzorin/directory-backend/internal/service"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Применить SQL миграции к PostgreSQL",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	conn, err := db.NewPostgres(cmd.Context(), cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer conn.Close()

	applied, err := db.RunMigrations(cmd.Context(), conn, app.MigrationsFS(cfg.MigrationsPath))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "применено миграций: %d\n", applied)
	return nil
}

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Загрузить фикстуры каталога из YAML",
	Args:  cobra.NoArgs,
	RunE:  runSeed,
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "файл фикстур, по умолчанию SEED_FILE")
}

func runSeed(cmd *cobra.Command, args []string) error {
	file := seedFile
	if file == "" {
		file = cfg.SeedFile
	}

	// memory хранилище не должно само загружать SEED_FILE до команды.
	storeCfg := *cfg
	storeCfg.SeedFile = ""
	store, closeStore, err := app.OpenStore(cmd.Context(), &storeCfg)
	if err != nil {
		return err
	}
	defer closeStore()

	result, err := service.NewSeedService(store, nil).SeedFile(cmd.Context(), file)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: локаций %d, профилей %d, групп %d, добавлено %d\n",
		file, result.Locations, result.Profiles, result.Groups, result.Inserted)
	return nil
}

var searchOpts struct {
	tab      string
	term     string
	category string
	location string
	asJSON   bool
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Поиск по каталогу с фильтрами вкладки, текста, категории и локации",
	Args:  cobra.NoArgs,
	RunE:  runSearch,
}

func init() {
	f := searchCmd.Flags()
	f.StringVar(&searchOpts.tab, "tab", "users", "вкладка: users|businesses|groups")
	f.StringVar(&searchOpts.term, "q", "", "поисковый запрос")
	f.StringVar(&searchOpts.category, "category", "", "категория или all_categories")
	f.StringVar(&searchOpts.location, "location", "", "uuid страны или all_locations")
	f.BoolVar(&searchOpts.asJSON, "json", false, "вывести результат в JSON")
}

func runSearch(cmd *cobra.Command, args []string) error {
	domain, err := models.ParseDomain(searchOpts.tab)
	if err != nil {
		return fmt.Errorf("%w: %q", err, searchOpts.tab)
	}
	filter, err := models.ParseFilter(searchOpts.term, searchOpts.category, searchOpts.location)
	if err != nil {
		return err
	}

	store, closeStore, err := app.OpenStore(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	return search(cmd.Context(), cmd.OutOrStdout(), service.NewSearchService(store), domain, filter, searchOpts.asJSON)
}

func search(ctx context.Context, out io.Writer, svc *service.SearchService, domain models.Domain, filter models.Filter, asJSON bool) error {
	var rows []row
	if domain.IsProfiles() {
		for _, p := range svc.FetchProfiles(ctx, domain, filter) {
			rows = append(rows, profileRow(p))
		}
	} else {
		for _, g := range svc.FetchGroups(ctx, filter) {
			rows = append(rows, groupRow(g))
		}
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if rows == nil {
			rows = []row{}
		}
		return enc.Encode(rows)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tLOCATION")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.ID, r.Name, r.Category, r.Location)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "найдено: %d\n", len(rows))
	return nil
}

type row struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Location string `json:"location,omitempty"`
}

func profileRow(p models.Profile) row {
	r := row{ID: p.ID.String(), Name: p.Name}
	for _, v := range []*string{p.BusinessType, p.PrimarySkill, p.Occupation} {
		if v != nil && *v != "" {
			r.Category = *v
			break
		}
	}
	if p.Location != nil {
		r.Location = locationPath(p.Location)
	}
	return r
}

func groupRow(g models.Group) row {
	r := row{ID: g.ID.String(), Name: g.Name}
	if g.Category != nil {
		r.Category = *g.Category
	}
	if g.Location != nil {
		r.Location = g.Location.Name
	}
	return r
}

// locationPath печатает цепочку локаций от города к стране.
func locationPath(ref *models.LocationRef) string {
	var parts []string
	for l := ref; l != nil; l = l.Parent {
		parts = append(parts, l.Name)
	}
	return strings.Join(parts, ", ")
}
