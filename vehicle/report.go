// Package vehicle enriches a listing with a decoded VIN report and market
// comparables.
package vehicle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"golang.org/x/sync/singleflight"

	"github.com/deal-drive/site/cache"
	"github.com/deal-drive/site/observability"
)

var (
	ErrInvalidVIN = errors.New("invalid VIN")
	ErrNotDecoded = errors.New("VIN could not be decoded")
)

// VINs are 17 characters and never contain I, O or Q.
var vinPattern = regexp.MustCompile(`^[A-HJ-NPR-Z0-9]{17}$`)

// NormalizeVIN upper-cases and trims a VIN and reports whether it is well formed.
func NormalizeVIN(vin string) (string, bool) {
	vin = strings.ToUpper(strings.TrimSpace(vin))
	return vin, vinPattern.MatchString(vin)
}

// Report is the decoded description of a VIN.
type Report struct {
	VIN          string
	Make         string
	Model        string
	Year         int
	Trim         string
	BodyClass    string
	DriveType    string
	FuelType     string
	Cylinders    string
	Displacement string
	Transmission string
	Manufacturer string
	PlantCountry string
	// Note is the decoder's remark when the VIN decoded with warnings.
	Note string
}

// Engine is a short engine description such as "2.4L 4-cyl".
func (r Report) Engine() string {
	var parts []string
	if r.Displacement != "" {
		if f, err := strconv.ParseFloat(r.Displacement, 64); err == nil {
			parts = append(parts, strconv.FormatFloat(f, 'f', 1, 64)+"L")
		}
	}
	if r.Cylinders != "" {
		parts = append(parts, r.Cylinders+"-cyl")
	}
	return strings.Join(parts, " ")
}

type decodeResult struct {
	Make              string `json:"Make"`
	Model             string `json:"Model"`
	ModelYear         string `json:"ModelYear"`
	Trim              string `json:"Trim"`
	BodyClass         string `json:"BodyClass"`
	DriveType         string `json:"DriveType"`
	FuelTypePrimary   string `json:"FuelTypePrimary"`
	EngineCylinders   string `json:"EngineCylinders"`
	DisplacementL     string `json:"DisplacementL"`
	TransmissionStyle string `json:"TransmissionStyle"`
	Manufacturer      string `json:"Manufacturer"`
	PlantCountry      string `json:"PlantCountry"`
	ErrorCode         string `json:"ErrorCode"`
	ErrorText         string `json:"ErrorText"`
}

type decodeResponse struct {
	Results []decodeResult `json:"Results"`
}

// Reporter decodes VINs against the NHTSA vPIC API.
type Reporter struct {
	client  *fasthttp.Client
	baseURL string
	timeout time.Duration
	cache   *cache.Cache[Report]
	group   singleflight.Group
}

// NewReporter creates a reporter whose decoded reports are cached for ttl.
func NewReporter(baseURL string, ttl, timeout time.Duration) (*Reporter, error) {
	c, err := cache.New("VIN Report Cache", ttl, func(r Report) int64 {
		return int64(len(r.Make) + len(r.Model) + len(r.Trim) + len(r.BodyClass) + len(r.Manufacturer) + 128)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create report cache: %w", err)
	}

	return &Reporter{
		client: &fasthttp.Client{
			Name:         "deal-drive",
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		cache:   c,
	}, nil
}

// Report returns the decoded report for vin. Concurrent lookups of the same
// VIN share one upstream request.
func (r *Reporter) Report(ctx context.Context, vin string) (Report, error) {
	vin, ok := NormalizeVIN(vin)
	if !ok {
		return Report{}, ErrInvalidVIN
	}
	if cached, found := r.cache.Get(vin); found {
		return cached, nil
	}

	v, err, _ := r.group.Do(vin, func() (interface{}, error) {
		report, err := r.decode(ctx, vin)
		if err != nil {
			return Report{}, err
		}
		r.cache.Set(vin, report)
		return report, nil
	})
	if err != nil {
		return Report{}, err
	}
	return v.(Report), nil
}

// CacheStats reports the report cache counters for /health.
func (r *Reporter) CacheStats() cache.Stats {
	return r.cache.Stats()
}

// Close releases the report cache.
func (r *Reporter) Close() {
	r.cache.Close()
}

func (r *Reporter) decode(ctx context.Context, vin string) (Report, error) {
	ctx, span := observability.Tracer().Start(ctx, "vehicle.decode_vin")
	defer span.End()

	if err := ctx.Err(); err != nil {
		return Report{}, err
	}
	deadline := time.Now().Add(r.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fmt.Sprintf("%s/api/vehicles/DecodeVinValues/%s?format=json", r.baseURL, vin))
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	if err := r.client.DoDeadline(req, resp, deadline); err != nil {
		span.RecordError(err)
		return Report{}, fmt.Errorf("failed to reach VIN decoder: %w", err)
	}
	observability.LoggerFromContext(ctx).Debug().
		Str("component", "vehicle").
		Str("vin", vin).
		Int("status", resp.StatusCode()).
		Dur("latency", time.Since(start)).
		Msg("VIN decode")

	if resp.StatusCode() != fasthttp.StatusOK {
		return Report{}, fmt.Errorf("VIN decoder returned status %d", resp.StatusCode())
	}

	var decoded decodeResponse
	if err := json.Unmarshal(resp.Body(), &decoded); err != nil {
		return Report{}, fmt.Errorf("failed to decode VIN response: %w", err)
	}
	return reportFromResponse(vin, decoded)
}

func reportFromResponse(vin string, decoded decodeResponse) (Report, error) {
	if len(decoded.Results) == 0 {
		return Report{}, ErrNotDecoded
	}
	res := decoded.Results[0]
	if strings.TrimSpace(res.Make) == "" {
		return Report{}, ErrNotDecoded
	}

	year, _ := strconv.Atoi(res.ModelYear)
	report := Report{
		VIN:          vin,
		Make:         strings.TrimSpace(res.Make),
		Model:        strings.TrimSpace(res.Model),
		Year:         year,
		Trim:         strings.TrimSpace(res.Trim),
		BodyClass:    strings.TrimSpace(res.BodyClass),
		DriveType:    strings.TrimSpace(res.DriveType),
		FuelType:     strings.TrimSpace(res.FuelTypePrimary),
		Cylinders:    strings.TrimSpace(res.EngineCylinders),
		Displacement: strings.TrimSpace(res.DisplacementL),
		Transmission: strings.TrimSpace(res.TransmissionStyle),
		Manufacturer: strings.TrimSpace(res.Manufacturer),
		PlantCountry: strings.TrimSpace(res.PlantCountry),
	}
	// Error code "0" is a clean decode; anything else still carries fields.
	if code, _, _ := strings.Cut(res.ErrorCode, ","); code != "" && code != "0" {
		report.Note = strings.TrimSpace(res.ErrorText)
	}
	return report, nil
}
