package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
)

func newClient(apiURL string) *resty.Client {
	return resty.New().
		SetBaseURL(apiURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(3 * time.Minute)
}

// print writes the raw JSON response and fails on unexpected status codes.
func printResp(out io.Writer, resp *resty.Response) error {
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("http %d: %s", resp.StatusCode(), resp.String())
	}
	_, err := fmt.Fprintln(out, resp.String())
	return err
}

func runSeed(apiURL string, count int, out io.Writer) error {
	resp, err := newClient(apiURL).R().
		SetBody(map[string]int{"count": count}).
		Post("/seed")
	if err != nil {
		return err
	}
	return printResp(out, resp)
}

func runGet(apiURL string, keys []string, count int, out io.Writer) error {
	resp, err := newClient(apiURL).R().
		SetBody(map[string]interface{}{"keys": keys, "count": count}).
		Post("/get")
	if err != nil {
		return err
	}
	return printResp(out, resp)
}

func runStop(apiURL, path string, out io.Writer) error {
	resp, err := newClient(apiURL).R().Post(path)
	if err != nil {
		return err
	}
	return printResp(out, resp)
}

func runStatus(apiURL string, out io.Writer) error {
	c := newClient(apiURL)
	for _, path := range []string{"/status", "/status_get"} {
		resp, err := c.R().Get(path)
		if err != nil {
			return err
		}
		if err := printResp(out, resp); err != nil {
			return err
		}
	}
	return nil
}

func runAnalyze(apiURL, file string, out io.Writer) error {
	profile, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read profile: %w", err)
	}
	resp, err := newClient(apiURL).R().
		SetBody(map[string]string{"profile": string(profile)}).
		Post("/analyze")
	if err != nil {
		return err
	}
	return printResp(out, resp)
}

func runInfo(apiURL string, out io.Writer) error {
	resp, err := newClient(apiURL).R().Get("/info")
	if err != nil {
		return err
	}
	return printResp(out, resp)
}
