package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/fatih/color"
)

const (
	baseURL   = "http://localhost:3000/api"
	userToken = "REPLACE_WITH_A_VALID_JWT"
)

// Pretty print JSON helper
func prettyPrint(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(b))
}

// Request helper
func sendRequest(method, url, token string, body interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL+url, bodyReader)
	if err != nil {
		return nil, nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{} // Generation can take minutes, no timeout
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

func main() {
	color.Cyan("🚀 Starting Trip Planner API Smoke Test\n")

	// 1. Usage status before generating anything
	color.Yellow("\n[USER] 1. Get Usage Status")
	resp, body, err := sendRequest("GET", "/usage/v1/status", userToken, nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var usageResp map[string]interface{}
	json.Unmarshal(body, &usageResp)
	prettyPrint(usageResp)

	// 2. Generate an outline
	color.Yellow("\n[USER] 2. Generate Outline (Bali, 4 days)")
	outlineReq := map[string]interface{}{
		"destinations": []string{"Bali"},
		"dates":        "2026-09-10..2026-09-13",
		"pace":         "relaxed",
		"themes":       []string{"beaches", "temples", "food"},
	}
	resp, body, err = sendRequest("POST", "/planner/v1/outline", userToken, outlineReq)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var outlineResp map[string]interface{}
	json.Unmarshal(body, &outlineResp)

	var planID string
	if data, ok := outlineResp["data"].(map[string]interface{}); ok {
		if id, ok := data["plan_id"].(string); ok {
			planID = id
		}
		fmt.Printf("Plan ID: %s\n", planID)
		if outline, ok := data["outline"].(map[string]interface{}); ok {
			if days, ok := outline["days"].([]interface{}); ok {
				fmt.Printf("Outline days: %d\n", len(days))
			}
		}
	} else {
		prettyPrint(outlineResp)
	}

	// 3. Same request again, should be a cache hit and not burn quota
	color.Yellow("\n[USER] 3. Repeat Outline Request (expect cache hit)")
	resp, body, err = sendRequest("POST", "/planner/v1/outline", userToken, outlineReq)
	if err != nil {
		color.Red("Failed: %v", err)
	} else {
		color.Green("Status: %s", resp.Status)
		var repeatResp map[string]interface{}
		json.Unmarshal(body, &repeatResp)
		if data, ok := repeatResp["data"].(map[string]interface{}); ok {
			fmt.Printf("From cache: %v\n", data["from_cache"])
		}
	}

	// 4. Build the full itinerary for the saved outline
	if planID == "" {
		color.Red("Skipping itinerary test: no plan id returned")
	} else {
		color.Yellow("\n[USER] 4. Generate Full Itinerary")
		itinReq := map[string]interface{}{"plan_id": planID}
		resp, body, err = sendRequest("POST", "/planner/v1/itinerary", userToken, itinReq)
		if err != nil {
			color.Red("Failed: %v", err)
		} else {
			color.Green("Status: %s", resp.Status)
			var itinResp map[string]interface{}
			json.Unmarshal(body, &itinResp)
			if data, ok := itinResp["data"].(map[string]interface{}); ok {
				fmt.Printf("Plan status: %v\n", data["status"])
				if itin, ok := data["itinerary"].(map[string]interface{}); ok {
					if days, ok := itin["days"].([]interface{}); ok {
						fmt.Printf("Generated days: %d\n", len(days))
					}
				}
			}
		}
	}

	// 5. Streaming generation: print NDJSON progress lines as they arrive
	color.Yellow("\n[USER] 5. Streamed Generation (Kyoto, 2 days)")
	streamReq := map[string]interface{}{
		"destination": "Kyoto",
		"dates":       "2026-10-01..2026-10-02",
	}
	jsonBody, _ := json.Marshal(streamReq)
	req, _ := http.NewRequest("POST", baseURL+"/planner/v1/generate/stream", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+userToken)
	streamResp, err := (&http.Client{}).Do(req)
	if err != nil {
		color.Red("Failed: %v", err)
	} else {
		color.Green("Status: %s", streamResp.Status)
		scanner := bufio.NewScanner(streamResp.Body)
		scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
		for scanner.Scan() {
			var event map[string]interface{}
			if err := json.Unmarshal(scanner.Bytes(), &event); err != nil {
				continue
			}
			fmt.Printf("  [%v] %v\n", event["step"], event["message"])
		}
		streamResp.Body.Close()
	}

	// 6. Replan: sudden rain mid-trip
	color.Yellow("\n[USER] 6. Replan (rain trigger)")
	replanReq := map[string]interface{}{
		"planId": planID,
		"trigger": map[string]interface{}{
			"type": "rain",
			"day":  2,
		},
		"travelerState": map[string]interface{}{
			"estimated_fatigue":   0.4,
			"walking_distance_km": 5.2,
			"delay_minutes":       0,
			"current_time":        "13:30",
			"current_location":    map[string]interface{}{"lat": -8.6478, "lng": 115.1385},
			"trigger_type":        "rain",
		},
		"tripContext": map[string]interface{}{
			"city":           "Bali",
			"weather":        map[string]interface{}{"condition": "rain", "precipitation_probability": 0.9},
			"current_time":   "13:30",
			"bookings":       []interface{}{},
			"companion_type": "couple",
			"budget":         "medium",
		},
		"tripPlan": map[string]interface{}{
			"itinerary": map[string]interface{}{"destination": "Bali", "days": []interface{}{}},
			"slots":     []interface{}{},
		},
	}
	resp, body, err = sendRequest("POST", "/replan/v1", userToken, replanReq)
	if err != nil {
		color.Red("Failed: %v", err)
	} else {
		color.Green("Status: %s", resp.Status)
		var replanResp map[string]interface{}
		json.Unmarshal(body, &replanResp)
		fmt.Printf("Success: %v | Degraded: %v | ProcessingTime: %vms\n",
			replanResp["success"], replanResp["degraded"], replanResp["processingTimeMs"])
		if primary, ok := replanResp["primaryOption"].(map[string]interface{}); ok {
			fmt.Printf("Primary category: %v | %v\n", primary["category"], primary["explanation"])
		}
	}

	color.Cyan("\n✅ Smoke test finished")
}
