package headhunter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	apiURL    = "https://api.hh.ru"
	userAgent = "spigell/hh-interviewer (spigelly@gmail.com)"
)

var vacancyIDPattern = regexp.MustCompile(`^\d+$`)

// Client reads vacancies and resumes from the HeadHunter API. The token is
// only needed for resumes.
type Client struct {
	token      string
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
}

func New(logger *zap.Logger, token string) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		token:  token,
		APIURL: apiURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger:    logger,
		UserAgent: userAgent,
	}
}

// GetVacancy fetches a vacancy by its id or hh.ru URL.
func (c *Client) GetVacancy(ctx context.Context, idOrURL string) (*Vacancy, error) {
	id, err := ParseVacancyID(idOrURL)
	if err != nil {
		return nil, err
	}

	var vacancy *Vacancy
	if err := c.getJSON(ctx, fmt.Sprintf("%s/vacancies/%s", c.APIURL, id), &vacancy); err != nil {
		return nil, fmt.Errorf("get vacancy %s: %w", id, err)
	}
	if vacancy == nil {
		return nil, fmt.Errorf("get vacancy %s: empty response", id)
	}

	return vacancy, nil
}

// JobDescription fetches a vacancy and renders it as plain text.
func (c *Client) JobDescription(ctx context.Context, idOrURL string) (string, error) {
	vacancy, err := c.GetVacancy(ctx, idOrURL)
	if err != nil {
		return "", err
	}
	return vacancy.JobDescription(), nil
}

func (c *Client) GetResume(ctx context.Context, id string) (*Resume, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("resume id is required")
	}
	if c.token == "" {
		return nil, errors.New("headhunter token is required to read resumes")
	}

	var raw map[string]any
	if err := c.getJSON(ctx, fmt.Sprintf("%s/resumes/%s", c.APIURL, id), &raw); err != nil {
		return nil, fmt.Errorf("get resume %s: %w", id, err)
	}

	return decodeResume(raw)
}

// ParseVacancyID accepts a bare id or a vacancy URL like
// https://hh.ru/vacancy/123456?from=search.
func ParseVacancyID(s string) (string, error) {
	s = strings.TrimSpace(s)
	if vacancyIDPattern.MatchString(s) {
		return s, nil
	}

	u, err := url.Parse(s)
	if err == nil && u.Host != "" {
		parts := strings.Split(strings.Trim(u.Path, "/"), "/")
		for i := 0; i+1 < len(parts); i++ {
			if (parts[i] == "vacancy" || parts[i] == "vacancies") && vacancyIDPattern.MatchString(parts[i+1]) {
				return parts[i+1], nil
			}
		}
	}

	return "", fmt.Errorf("invalid vacancy reference: %q", s)
}
