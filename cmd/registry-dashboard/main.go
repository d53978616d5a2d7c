// registry-dashboard renders the admin user table in the terminal. It logs in
// against the registry API and falls back to the built-in demo roster when
// the API cannot be reached.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/sethvargo/go-envconfig"

	"github.com/campusreg/student-registry/internal/client/cache"
	"github.com/campusreg/student-registry/internal/client/dashboard"
	"github.com/campusreg/student-registry/internal/client/session"
	"github.com/campusreg/student-registry/internal/client/userdata"
	"github.com/campusreg/student-registry/internal/client/view"
	"github.com/campusreg/student-registry/internal/core/domain"
	"github.com/campusreg/student-registry/pkg/logger"
)

type dashConfig struct {
	APIBaseURL string `env:"API_BASE_URL, default=http://localhost:8080"`
	Email      string `env:"ADMIN_EMAIL"`
	Password   string `env:"ADMIN_PASSWORD"`
	LogLevel   string `env:"LOG_LEVEL, default=info"`
}

func main() {
	var cfg dashConfig
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	search := flag.String("search", "", "filter by name, email or registration number")
	role := flag.String("role", "", "filter by role (admin or student)")
	sortBy := flag.String("sort", view.SortByCreatedAt, "sort key (name, email, registrationNumber, dateOfBirth, role, createdAt)")
	sortOrder := flag.String("order", view.OrderDescending, "sort direction (asc or desc)")
	page := flag.Int("page", 1, "page number")
	pageSize := flag.Int("page-size", view.DefaultPageSize, "rows per page")
	flag.Parse()

	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true})

	ctx := context.Background()
	sess := session.New()
	remote := userdata.NewRemoteSource(cfg.APIBaseURL, sess)
	local := userdata.NewLocalSource()

	offline := false
	if cfg.Email != "" {
		err := remote.Login(ctx, cfg.Email, cfg.Password)
		switch {
		case err == nil:
			log.Info().Str("email", cfg.Email).Msg("logged in")
		case errors.Is(err, domain.ErrNetworkUnavailable):
			offline = true
			log.Warn().Str("api", cfg.APIBaseURL).Msg("registry unreachable, using local demo data")
		default:
			log.Fatal().Err(err).Msg("login failed")
		}
	} else {
		offline = true
		log.Info().Msg("no credentials set, using local demo data")
	}
	if offline {
		sess.Set("offline", cfg.Email, domain.RoleAdmin)
	}

	client := userdata.NewClient(remote, local, cache.New(cache.DefaultTTL), sess, log)

	toasts := &dashboard.ToastQueue{}
	d := dashboard.New(client, toasts, log)
	defer d.Close()

	d.ApplyState(ctx, view.State{
		Search:    *search,
		Role:      *role,
		SortBy:    *sortBy,
		SortOrder: *sortOrder,
		Page:      *page,
		PageSize:  *pageSize,
	})

	snap := d.Snapshot()
	if snap.Err != nil {
		log.Fatal().Err(snap.Err).Msg("could not load users")
	}
	render(snap.Result)

	for _, toast := range toasts.Active() {
		fmt.Printf("[%s] %s\n", toast.Level, toast.Message)
	}
}

func render(res *userdata.ListResult) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tEMAIL\tREG NUMBER\tROLE\tCOURSE\tSTATUS")
	for _, u := range res.Items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			u.FullName(), u.Email, u.RegistrationNumber, u.Role, u.Course, u.Status)
	}
	_ = w.Flush()
	fmt.Printf("page %d of %d (%d users)\n", res.Page, res.TotalPages, res.Total)
}
