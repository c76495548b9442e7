package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"
)

// StatusResponse mirrors the fields this script reads from the status endpoint
type StatusResponse struct {
	Phase         string `json:"phase"`
	LatestApplied string `json:"latestApplied"`
	PendingCount  int    `json:"pendingCount"`
	InvalidCount  int    `json:"invalidCount"`
}

// Endpoint defines one polled route
type Endpoint struct {
	Name string // For stats tracking
	Path string
}

// TestResult contains metrics for a single request
type TestResult struct {
	Success      bool
	ResponseTime time.Duration
	StatusCode   int
	Phase        string // Only set for status requests
	Error        error
}

// TestStats contains aggregated test statistics
type TestStats struct {
	TotalRequests      int
	SuccessfulRequests int
	FailedRequests     int
	TotalTime          time.Duration
	MinResponseTime    time.Duration
	MaxResponseTime    time.Duration
	TotalResponseTime  time.Duration
	ResponseTimes      []time.Duration
	ErrorCounts        map[string]int
	EndpointStats      map[string]int // Track requests per endpoint
	PhaseStats         map[string]int // Track executor phases observed via status
	Lock               sync.Mutex
}

func main() {

	// Define command line flags
	concurrency := flag.Int("c", 5, "Number of concurrent goroutines")
	totalRequests := flag.Int("n", 100, "Total number of requests to make")
	baseURL := flag.String("url", "http://localhost:8080", "Base URL for the API")
	delayMs := flag.Int("delay", 100, "Delay between requests in milliseconds")
	flag.Parse()

	// The API is read only, so hammering it while migrations run from the
	// CLI is safe; this checks the status surface stays responsive under
	// concurrent polling.
	endpoints := []Endpoint{
		{"Health", "/health"},
		{"Status", "/api/v1/migrations/status"},
		{"History", "/api/v1/migrations/history"},
	}

	fmt.Printf("Load testing status API at %s\n", *baseURL)
	fmt.Printf("Endpoints: %d routes polled at random\n", len(endpoints))
	fmt.Printf("Concurrency: %d goroutines\n", *concurrency)
	fmt.Printf("Total requests: %d\n", *totalRequests)
	fmt.Printf("Delay between requests: %d ms\n", *delayMs)

	// Initialize test statistics
	stats := &TestStats{
		TotalRequests:   *totalRequests,
		MinResponseTime: time.Hour, // Start with a high value that will be replaced
		ErrorCounts:     make(map[string]int),
		ResponseTimes:   make([]time.Duration, 0, *totalRequests),
		EndpointStats:   make(map[string]int),
		PhaseStats:      make(map[string]int),
	}

	// Initialize stats for each endpoint
	for _, endpoint := range endpoints {
		stats.EndpointStats[endpoint.Name] = 0
	}

	// Channel to collect results
	results := make(chan TestResult, *totalRequests)

	// Channel to distribute work
	jobs := make(chan int, *totalRequests)

	// Start worker goroutines
	var wg sync.WaitGroup
	fmt.Println("Starting worker goroutines...")
	for i := 0; i < *concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker(*baseURL, *delayMs, endpoints, jobs, results, stats)
		}()
	}

	// Fill the jobs channel
	go func() {
		for i := 0; i < *totalRequests; i++ {
			jobs <- i
		}
		close(jobs)
	}()

	// Start a goroutine to collect results
	go func() {
		for result := range results {
			stats.Lock.Lock()
			if result.Success {
				stats.SuccessfulRequests++
			} else {
				stats.FailedRequests++
				errMsg := "unknown"
				if result.Error != nil {
					errMsg = result.Error.Error()
				}
				stats.ErrorCounts[errMsg]++
			}

			if result.Phase != "" {
				stats.PhaseStats[result.Phase]++
			}

			stats.ResponseTimes = append(stats.ResponseTimes, result.ResponseTime)
			stats.TotalResponseTime += result.ResponseTime

			if result.ResponseTime < stats.MinResponseTime {
				stats.MinResponseTime = result.ResponseTime
			}
			if result.ResponseTime > stats.MaxResponseTime {
				stats.MaxResponseTime = result.ResponseTime
			}
			stats.Lock.Unlock()
		}
	}()

	// Start the timer
	startTime := time.Now()
	fmt.Println("Test running...")

	// Print progress periodically
	ticker := time.NewTicker(1 * time.Second)
	go func() {
		for range ticker.C {
			stats.Lock.Lock()
			completed := stats.SuccessfulRequests + stats.FailedRequests
			if completed > 0 {
				fmt.Printf("Progress: %d/%d requests completed (%.1f%%)\n",
					completed, stats.TotalRequests, float64(completed)/float64(stats.TotalRequests)*100)
			}
			stats.Lock.Unlock()
		}
	}()

	// Wait for all workers to finish
	wg.Wait()
	close(results)
	ticker.Stop()

	// Calculate the total test time
	stats.TotalTime = time.Since(startTime)

	// Print results
	printResults(stats)
}

func worker(baseURL string, delayMs int, endpoints []Endpoint,
	jobs <-chan int, results chan<- TestResult, stats *TestStats) {

	client := &http.Client{
		Timeout: 10 * time.Second,
	}

	for range jobs {
		// Optional delay between requests to prevent hammering one instance
		if delayMs > 0 {
			time.Sleep(time.Duration(delayMs) * time.Millisecond)
		}

		// Randomly select an endpoint
		endpoint := endpoints[rand.Intn(len(endpoints))]

		// Update stats for which endpoint was selected
		stats.Lock.Lock()
		stats.EndpointStats[endpoint.Name]++
		stats.Lock.Unlock()

		// Send the request and measure response time
		startTime := time.Now()
		resp, err := client.Get(baseURL + endpoint.Path)
		responseTime := time.Since(startTime)

		result := TestResult{
			ResponseTime: responseTime,
		}

		if err != nil {
			result.Success = false
			result.Error = err
		} else {
			statusCode := resp.StatusCode
			result.StatusCode = statusCode
			result.Success = (statusCode >= 200 && statusCode < 300)
			if !result.Success {
				result.Error = fmt.Errorf("HTTP status code %d", statusCode)
			}

			// Record the executor phase reported by status responses
			if result.Success && endpoint.Name == "Status" {
				var status StatusResponse
				if err := json.NewDecoder(resp.Body).Decode(&status); err == nil {
					result.Phase = status.Phase
				}
			}
			resp.Body.Close()
		}

		results <- result
	}
}

func printResults(stats *TestStats) {
	// Calculate RPS over the wall clock (includes the configured delays)
	rawRps := float64(stats.SuccessfulRequests) / stats.TotalTime.Seconds()

	// Calculate RPS if all requests were successful
	theoreticalRps := float64(stats.TotalRequests) / stats.TotalTime.Seconds()

	// Calculate average response time
	var avgResponseTime time.Duration
	if len(stats.ResponseTimes) > 0 {
		avgResponseTime = stats.TotalResponseTime / time.Duration(len(stats.ResponseTimes))
	}

	// Calculate percentiles
	var p50, p90, p95, p99 time.Duration
	if len(stats.ResponseTimes) > 0 {
		// Sort the response times
		sortedTimes := make([]time.Duration, len(stats.ResponseTimes))
		copy(sortedTimes, stats.ResponseTimes)

		// Simple bubble sort (OK for small datasets)
		for i := 0; i < len(sortedTimes); i++ {
			for j := i + 1; j < len(sortedTimes); j++ {
				if sortedTimes[i] > sortedTimes[j] {
					sortedTimes[i], sortedTimes[j] = sortedTimes[j], sortedTimes[i]
				}
			}
		}

		p50 = sortedTimes[len(sortedTimes)*50/100]
		p90 = sortedTimes[len(sortedTimes)*90/100]
		p95 = sortedTimes[len(sortedTimes)*95/100]
		p99 = sortedTimes[len(sortedTimes)*99/100]
	}

	// Print results
	fmt.Println("\n================= TEST RESULTS =================")
	fmt.Printf("Total Requests:      %d\n", stats.TotalRequests)
	fmt.Printf("Successful Requests: %d (%.1f%%)\n", stats.SuccessfulRequests,
		float64(stats.SuccessfulRequests)/float64(stats.TotalRequests)*100)
	fmt.Printf("Failed Requests:     %d (%.1f%%)\n", stats.FailedRequests,
		float64(stats.FailedRequests)/float64(stats.TotalRequests)*100)
	fmt.Printf("Total Test Time:     %.2f seconds\n", stats.TotalTime.Seconds())

	fmt.Println("\n----------------- PERFORMANCE -----------------")
	fmt.Printf("Raw RPS:             %.2f (successful requests / total time)\n", rawRps)
	fmt.Printf("Theoretical RPS:     %.2f (if all requests were successful)\n", theoreticalRps)

	fmt.Println("\n----------------- RESPONSE TIMES -----------------")
	fmt.Printf("Average Response:    %v\n", avgResponseTime)
	fmt.Printf("Minimum Response:    %v\n", stats.MinResponseTime)
	fmt.Printf("Maximum Response:    %v\n", stats.MaxResponseTime)
	fmt.Printf("P50 Response:        %v\n", p50)
	fmt.Printf("P90 Response:        %v\n", p90)
	fmt.Printf("P95 Response:        %v\n", p95)
	fmt.Printf("P99 Response:        %v\n", p99)

	// Print endpoint distribution
	fmt.Println("\n----------------- ENDPOINT DISTRIBUTION -----------------")
	totalEndpoints := 0
	for _, count := range stats.EndpointStats {
		totalEndpoints += count
	}
	for endpoint, count := range stats.EndpointStats {
		if count > 0 {
			fmt.Printf("%-15s: %d requests (%.1f%%)\n", endpoint, count,
				float64(count)/float64(totalEndpoints)*100)
		}
	}

	// Print observed executor phases if any status responses decoded
	if len(stats.PhaseStats) > 0 {
		fmt.Println("\n----------------- OBSERVED PHASES -----------------")
		for phase, count := range stats.PhaseStats {
			fmt.Printf("%-15s: %d responses (%.1f%%)\n", phase, count,
				float64(count)/float64(stats.EndpointStats["Status"])*100)
		}
	}

	// Print error distribution if there were errors
	if stats.FailedRequests > 0 {
		fmt.Println("\n----------------- ERROR DISTRIBUTION -----------------")
		for errMsg, count := range stats.ErrorCounts {
			fmt.Printf("%-40s: %d (%.1f%%)\n", errMsg, count,
				float64(count)/float64(stats.TotalRequests)*100)
		}
	}

	// Final conclusion
	fmt.Println("\n================= CONCLUSION =================")
	if stats.FailedRequests == 0 && p95 < 500*time.Millisecond {
		fmt.Printf("✅ STATUS API HELD UP under concurrent polling (p95 %v)\n", p95)
	} else if stats.FailedRequests == 0 {
		fmt.Printf("⚠️ All requests succeeded but P95 is slow (%v); check the analyze path\n", p95)
	} else {
		fmt.Printf("❌ STATUS API DROPPED %d requests under load\n", stats.FailedRequests)
	}
	fmt.Println("================================================")
}
