// Package ebloc scrapes the e-bloc.ro condominium billing portal. The
// portal has no formal API: every endpoint is a form-encoded POST behind
// a session cookie obtained by submitting the login form.
package ebloc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"ebloc-backend/lib/restyutil"
	"ebloc-backend/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/codes"
)

const DefaultBaseUrl = "https://www.e-bloc.ro"

const (
	loginPath    = "/index.php"
	monthsPath   = "/ajax/AjaxGetAvizierLuni.php"
	homePath     = "/ajax/AjaxGetHomeApInfo.php"
	indexPath    = "/ajax/AjaxGetIndexContoare.php"
	receiptsPath = "/ajax/AjaxGetPlatiChitante.php"
)

// the landing page renders this phrase only for a logged-in owner
const loginMarker = "Acces online proprietari"

var ErrLoginFailed = errors.New("login rejected by e-bloc")

// ErrStatus marks a non-200 response from a data endpoint.
var ErrStatus = errors.New("unexpected response status")

// ErrDecode marks a 200 response whose body is not the expected JSON.
// The portal answers data requests with its HTML login page once the
// session cookie dies, so this doubles as the stale-session signal.
var ErrDecode = errors.New("undecodable response body")

// Account identifies one apartment within one owners' association.
type Account struct {
	AssociationId string `json:"association_id"`
	ApartmentId   string `json:"apartment_id"`
}

type Client struct {
	BaseUrl *url.URL
	Http    *resty.Client
}

type ClientOptions struct {
	// defaults to DefaultBaseUrl when empty
	BaseUrl string
}

func NewClient(ctx context.Context, opts ClientOptions) (*Client, error) {
	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	client.SetTimeout(time.Second * 30)

	telemetry.InstrumentResty(client, "scrapers/ebloc/http")
	restyutil.Attach(client, instrumentOutput)

	return &Client{
		BaseUrl: baseUrl,
		Http:    client,
	}, nil
}

// Login submits the login form and verifies the owner-access marker on
// the returned page. The session cookie lands in the client's jar.
func (c *Client) Login(ctx context.Context, username, password string) error {
	ctx, span := tracer.Start(ctx, "client:Login")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"pUser": username,
			"pPass": password,
		}).
		Post(loginPath)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to make login request")
		return err
	}
	if res.StatusCode() != http.StatusOK {
		span.SetStatus(codes.Error, "login returned bad status")
		return fmt.Errorf("%w: login returned %d", ErrStatus, res.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		span.SetStatus(codes.Error, "failed to parse login page html")
		return err
	}
	if !strings.Contains(doc.Text(), loginMarker) {
		span.SetStatus(codes.Error, ErrLoginFailed.Error())
		return ErrLoginFailed
	}

	return nil
}

// FetchMonths returns the billboard month list in document order.
func (c *Client) FetchMonths(ctx context.Context, acct Account) (MonthList, error) {
	body, err := c.fetchBody(ctx, monthsPath, map[string]string{
		"pIdAsoc": acct.AssociationId,
		"pIdAp":   acct.ApartmentId,
	})
	if err != nil {
		return nil, err
	}
	months, err := decodeMonthList(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrDecode, monthsPath, err.Error())
	}
	return months, nil
}

// FetchHome returns the apartment summary for the given billing period.
func (c *Client) FetchHome(ctx context.Context, acct Account, month string) (RawMap, error) {
	return c.fetchJson(ctx, homePath, periodForm(acct, month))
}

// FetchIndex returns the meter readings for the given billing period.
func (c *Client) FetchIndex(ctx context.Context, acct Account, month string) (RawMap, error) {
	return c.fetchJson(ctx, indexPath, periodForm(acct, month))
}

// FetchReceipts returns the payment receipts for the given billing period.
func (c *Client) FetchReceipts(ctx context.Context, acct Account, month string) (RawMap, error) {
	return c.fetchJson(ctx, receiptsPath, periodForm(acct, month))
}

func periodForm(acct Account, month string) map[string]string {
	return map[string]string{
		"pIdAsoc": acct.AssociationId,
		"pIdAp":   acct.ApartmentId,
		"pLuna":   month,
	}
}

func (c *Client) fetchBody(ctx context.Context, path string, form map[string]string) ([]byte, error) {
	ctx, span := tracer.Start(ctx, fmt.Sprintf("client:fetch %s", path))
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		SetHeader("X-Requested-With", "XMLHttpRequest").
		SetFormData(form).
		Post(path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport failure")
		return nil, err
	}
	if res.StatusCode() != http.StatusOK {
		span.SetStatus(codes.Error, "bad status")
		return nil, fmt.Errorf("%w: %d from %s", ErrStatus, res.StatusCode(), path)
	}
	return res.Body(), nil
}

func (c *Client) fetchJson(ctx context.Context, path string, form map[string]string) (RawMap, error) {
	body, err := c.fetchBody(ctx, path, form)
	if err != nil {
		return nil, err
	}
	var out RawMap
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrDecode, path, err.Error())
	}
	if out == nil {
		out = RawMap{}
	}
	return out, nil
}
