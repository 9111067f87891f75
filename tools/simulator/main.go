// Traffic simulator: posts random sensor events against /sensor_event at a
// fixed period, for demos and smoke tests.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"time"
)

type simConfig struct {
	APIBase string
	Lot     int
	Sensors int
	Period  time.Duration
}

func loadConfig() simConfig {
	cfg := simConfig{
		APIBase: "http://localhost:8080",
		Lot:     1,
		Sensors: 50,
		Period:  2 * time.Second,
	}
	if v := os.Getenv("API_BASE"); v != "" {
		cfg.APIBase = v
	}
	if v := os.Getenv("SIM_LOT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Lot = n
		}
	}
	if v := os.Getenv("SIM_SENSORS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Sensors = n
		}
	}
	if v := os.Getenv("SIM_PERIOD"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Period = d
		}
	}
	return cfg
}

func main() {
	cfg := loadConfig()

	sensorIDs := make([]int, cfg.Sensors)
	for i := range sensorIDs {
		sensorIDs[i] = cfg.Lot*1000 + i + 1
	}
	sites := []string{"EST-001", "EST-002", "EST-003"}
	states := []string{"ocupado", "libre"}

	client := &http.Client{Timeout: 5 * time.Second}
	log.Printf("Simulating %d sensors against %s every %v", len(sensorIDs), cfg.APIBase, cfg.Period)

	var sent, failed int
	ticker := time.NewTicker(cfg.Period)
	defer ticker.Stop()

	for range ticker.C {
		event := map[string]any{
			"sensor_id":          sensorIDs[rand.Intn(len(sensorIDs))],
			"estacionamiento_id": sites[rand.Intn(len(sites))],
			"estado":             states[rand.Intn(len(states))],
			"ts":                 time.Now().UTC().Format(time.RFC3339),
			"payload": map[string]any{
				"battery_v": 3.0 + rand.Float64()*1.2,
				"rssi":      -90 + rand.Intn(50),
			},
		}

		if err := post(client, cfg.APIBase+"/sensor_event", event); err != nil {
			failed++
			log.Printf("[WARN] POST failed: %v", err)
		} else {
			sent++
		}

		if (sent+failed)%50 == 0 {
			log.Printf("sent=%d failed=%d", sent, failed)
		}
	}
}

func post(client *http.Client, url string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
