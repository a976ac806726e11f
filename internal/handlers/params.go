package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"cloud.google.com/go/civil"

	"payments-dashboard/internal/config"
	"payments-dashboard/internal/models"
	"payments-dashboard/internal/services"
)

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%s must be a positive integer", name)
	}
	return n, nil
}

// pageParams reads page and per_page, capping per_page at the configured
// maximum.
func pageParams(r *http.Request, cfg config.PaginationConfig) (page, perPage int, err error) {
	if page, err = queryInt(r, "page", 1); err != nil {
		return 0, 0, err
	}
	if perPage, err = queryInt(r, "per_page", cfg.DefaultPageSize); err != nil {
		return 0, 0, err
	}
	return page, min(perPage, cfg.MaxPageSize), nil
}

func queryDate(r *http.Request, name string) (civil.Date, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return civil.Date{}, nil
	}
	d, err := civil.ParseDate(raw)
	if err != nil {
		return civil.Date{}, fmt.Errorf("%s must be a YYYY-MM-DD date", name)
	}
	return d, nil
}

func dateRange(r *http.Request) (services.DateRange, error) {
	from, err := queryDate(r, "from")
	if err != nil {
		return services.DateRange{}, err
	}
	to, err := queryDate(r, "to")
	if err != nil {
		return services.DateRange{}, err
	}
	if from.IsValid() && to.IsValid() && to.Before(from) {
		return services.DateRange{}, fmt.Errorf("to must not be before from")
	}
	return services.DateRange{From: from, To: to}, nil
}

// statuses accepts repeated status parameters and comma-separated lists.
func statuses(r *http.Request) []models.Status {
	var out []models.Status
	for _, v := range r.URL.Query()["status"] {
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, models.Status(s))
			}
		}
	}
	return out
}

// category parses an optional category; "" and "All" mean every category.
func category(raw string) (*models.Category, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "all") {
		return nil, nil
	}
	c, ok := models.ParseCategory(raw)
	if !ok {
		return nil, fmt.Errorf("category must be Adspends or Subscription, got %q", raw)
	}
	return &c, nil
}

func transactionFilter(r *http.Request, cfg config.PaginationConfig) (services.TransactionFilter, error) {
	var f services.TransactionFilter
	q := r.URL.Query()

	captured, err := services.ParseCapturedFilter(strings.TrimSpace(q.Get("captured")))
	if err != nil {
		return f, err
	}
	cat, err := category(q.Get("category"))
	if err != nil {
		return f, err
	}
	created, err := dateRange(r)
	if err != nil {
		return f, err
	}
	page, perPage, err := pageParams(r, cfg)
	if err != nil {
		return f, err
	}

	return services.TransactionFilter{
		Statuses: statuses(r),
		Captured: captured,
		Category: cat,
		Created:  created,
		Search:   strings.TrimSpace(q.Get("q")),
		Page:     page,
		PageSize: perPage,
	}, nil
}
