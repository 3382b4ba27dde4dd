package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

type step struct {
	Type string
	Time string
}

// day is a realistic night shift crossing midnight with one break.
var day = []step{
	{"day_in", "22:00"},
	{"break_start", "01:00"},
	{"break_end", "01:30"},
	{"day_out", "06:00"},
}

func main() {
	url := flag.String("url", "http://localhost:8080/api/v1/time-clock-events", "create endpoint")
	employees := flag.Int("employees", 2000, "number of employees to simulate")
	concurrency := flag.Int("concurrency", 50, "concurrent employees")
	date := flag.String("date", time.Now().Format("2006-01-02"), "clock_date to record")
	flag.Parse()

	totalRequests := *employees * len(day)
	fmt.Printf("Starting load test: %d employees (%d events each) to %s with concurrency %d\n", *employees, len(day), *url, *concurrency)

	var successCount, rejectedCount, failCount int64
	client := &http.Client{Timeout: 10 * time.Second}

	var g errgroup.Group
	g.SetLimit(*concurrency)

	startTime := time.Now()
	for i := 0; i < *employees; i++ {
		userID := int64(i + 1)
		g.Go(func() error {
			// Steps of one employee are sequential; each depends on the previous.
			for j, s := range day {
				body := map[string]any{
					"shop_id":    1,
					"user_id":    userID,
					"clock_date": *date,
					"time":       s.Time,
					"type":       s.Type,
				}
				if j == 0 {
					body["shift_start"] = "22:00"
					body["shift_end"] = "06:00"
					body["buffer_time"] = 1
				}
				payload, _ := json.Marshal(body)

				resp, err := client.Post(*url, "application/json", bytes.NewReader(payload))
				if err != nil {
					atomic.AddInt64(&failCount, 1)
					continue
				}
				switch {
				case resp.StatusCode >= 200 && resp.StatusCode < 300:
					atomic.AddInt64(&successCount, 1)
				case resp.StatusCode == http.StatusUnprocessableEntity:
					atomic.AddInt64(&rejectedCount, 1)
				default:
					atomic.AddInt64(&failCount, 1)
				}
				resp.Body.Close()
			}
			return nil
		})
	}

	_ = g.Wait()
	duration := time.Since(startTime)

	fmt.Println("\n--- Load Test Results ---")
	fmt.Printf("Total Duration: %v\n", duration)
	fmt.Printf("Total Requests: %d\n", totalRequests)
	fmt.Printf("Successful:     %d\n", successCount)
	fmt.Printf("Rejected (422): %d\n", rejectedCount)
	fmt.Printf("Failed:         %d\n", failCount)
	fmt.Printf("Requests/Sec:   %.2f\n", float64(totalRequests)/duration.Seconds())
}
