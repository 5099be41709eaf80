package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type AlertLevel string

const (
	AlertInfoLevel  AlertLevel = "INFO"
	AlertWarnLevel  AlertLevel = "WARN"
	AlertErrorLevel AlertLevel = "ERROR"
)

type discordEmbedField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type discordEmbed struct {
	Title  string              `json:"title"`
	Color  int                 `json:"color"`
	Fields []discordEmbedField `json:"fields"`
}

type discordWebhookPayload struct {
	Embeds []discordEmbed `json:"embeds"`
}

func alertColor(level AlertLevel) int {
	switch level {
	case AlertInfoLevel:
		return 3066993 // Green
	case AlertWarnLevel:
		return 15105570 // Orange
	case AlertErrorLevel:
		return 15158332 // Red
	default:
		return 3447003 // Blue
	}
}

func sendAlert(webhookURL string, level AlertLevel, component, operation, detail string) error {
	if webhookURL == "" {
		return nil
	}
	embed := discordEmbed{
		Title: string(level) + " Alert",
		Color: alertColor(level),
		Fields: []discordEmbedField{
			{Name: "Component", Value: component},
			{Name: "Operation", Value: operation},
			{Name: "Detail", Value: detail},
		},
	}

	payload := discordWebhookPayload{
		Embeds: []discordEmbed{embed},
	}

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest("POST", webhookURL, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("failed to send alert to discord, status: %s, body: %s", resp.Status, string(body))
	}

	return nil
}

func AlertInfo(webhookURL, component, operation, detail string) error {
	return sendAlert(webhookURL, AlertInfoLevel, component, operation, detail)
}

func AlertWarn(webhookURL, component, operation, detail string) error {
	return sendAlert(webhookURL, AlertWarnLevel, component, operation, detail)
}

func AlertError(webhookURL, component, operation, detail string) error {
	return sendAlert(webhookURL, AlertErrorLevel, component, operation, detail)
}
