package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

const (
	baseURL      = "http://127.0.0.1:18090"
	numWorkers   = 50
	testDuration = 10 * time.Second
	numEmployees = 100
)

var httpClient = &http.Client{
	Timeout: 5 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        200,
		MaxIdleConnsPerHost: 200,
		IdleConnTimeout:     30 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   2 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	},
}

type result struct {
	endpoint string
	status   int
	latency  time.Duration
	err      bool
}

type stats struct {
	count     int64
	errors    int64
	latencies []time.Duration
}

var employeeIDs []string

func main() {
	fmt.Println("=== TimeClock Load Test ===")
	fmt.Printf("Workers: %d | Duration: %s | Employees: %d\n\n", numWorkers, testDuration, numEmployees)

	// Wait for server
	fmt.Print("Waiting for server... ")
	for i := 0; i < 30; i++ {
		resp, err := httpClient.Get(baseURL + "/health")
		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			break
		}
		if i == 29 {
			fmt.Println("FAILED: server not responding")
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
	fmt.Println("OK")

	// Phase 0: Seed employees
	fmt.Println("\n--- Phase 0: Seeding employees (POST /employees) ---")
	for i := 0; i < numEmployees; i++ {
		id, err := seedEmployee(i)
		if err != nil {
			fmt.Printf("seed failed: %s\n", err)
			return
		}
		employeeIDs = append(employeeIDs, id)
	}
	fmt.Printf("Seeded %d employees\n", len(employeeIDs))

	// Phase 1: Clock-heavy load
	fmt.Println("\n--- Phase 1: Clock flows (mint, verify, pin, photo) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		return doClockCycle(rng)
	})

	// Phase 2: Mixed load
	fmt.Println("\n--- Phase 2: Mixed load (40% clock, 60% reads) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.40:
			return doClockCycle(rng)
		case r < 0.60:
			return doListEmployees()
		case r < 0.80:
			return doListShifts(rng)
		case r < 0.93:
			return doValidateShift(rng)
		default:
			return doActiveShift(rng)
		}
	})

	// Phase 3: Read-heavy load against the cached listings
	fmt.Println("\n--- Phase 3: Read-heavy load (10% clock, 90% GET) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.10:
			return doClockCycle(rng)
		case r < 0.45:
			return doListEmployees()
		case r < 0.80:
			return doListShifts(rng)
		default:
			return doActiveShift(rng)
		}
	})
}

func runPhase(duration time.Duration, workFn func(rng *rand.Rand) result) {
	results := make(chan result, 10000)
	var wg sync.WaitGroup
	var totalOps atomic.Int64
	stop := make(chan struct{})

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for {
				select {
				case <-stop:
					return
				default:
					r := workFn(rng)
					totalOps.Add(1)
					results <- r
				}
			}
		}(rand.Int63() + int64(i))
	}

	allResults := make(map[string]*stats)
	done := make(chan struct{})
	go func() {
		for r := range results {
			s, ok := allResults[r.endpoint]
			if !ok {
				s = &stats{}
				allResults[r.endpoint] = s
			}
			s.count++
			if r.err {
				s.errors++
			}
			s.latencies = append(s.latencies, r.latency)
		}
		close(done)
	}()

	time.Sleep(duration)
	close(stop)
	wg.Wait()
	close(results)
	<-done

	printResults(allResults, duration)
}

func printResults(allResults map[string]*stats, duration time.Duration) {
	var totalOps int64
	var totalErrors int64

	endpoints := make([]string, 0, len(allResults))
	for ep := range allResults {
		endpoints = append(endpoints, ep)
	}
	sort.Strings(endpoints)

	fmt.Printf("\n  %-24s %8s %6s %10s %10s %10s %10s\n",
		"Endpoint", "Reqs", "Errs", "Avg", "P50", "P95", "P99")
	fmt.Println("  " + repeat("-", 90))

	for _, ep := range endpoints {
		s := allResults[ep]
		totalOps += s.count
		totalErrors += s.errors

		sort.Slice(s.latencies, func(i, j int) bool {
			return s.latencies[i] < s.latencies[j]
		})

		avg := avgDuration(s.latencies)
		p50 := percentile(s.latencies, 0.50)
		p95 := percentile(s.latencies, 0.95)
		p99 := percentile(s.latencies, 0.99)

		fmt.Printf("  %-24s %8d %6d %10s %10s %10s %10s\n",
			ep, s.count, s.errors, fmtDur(avg), fmtDur(p50), fmtDur(p95), fmtDur(p99))
	}

	rps := float64(totalOps) / duration.Seconds()
	fmt.Println("  " + repeat("-", 90))
	fmt.Printf("  Total: %d reqs | Errors: %d (%.1f%%) | RPS: %.0f\n",
		totalOps, totalErrors, float64(totalErrors)/float64(totalOps)*100, rps)
}

func seedEmployee(n int) (string, error) {
	body, _ := json.Marshal(map[string]string{
		"name": fmt.Sprintf("Employee %d", n),
		"pin":  "1234",
	})
	resp, err := httpClient.Post(baseURL+"/employees", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 201 {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	var view struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		return "", err
	}
	return view.ID, nil
}

// doClockCycle runs a complete verification: mint a session, verify it,
// submit the PIN and the photo. Conflicts from concurrent flows on the
// same employee count as errors only on unexpected statuses.
func doClockCycle(rng *rand.Rand) result {
	emp := employeeIDs[rng.Intn(len(employeeIDs))]
	start := time.Now()

	resp, err := httpClient.Get(fmt.Sprintf("%s/clock/session?employee=%s&action=clock", baseURL, emp))
	if err != nil {
		return result{"clock cycle", 0, time.Since(start), true}
	}
	var minted struct {
		URL string `json:"url"`
	}
	decodeErr := json.NewDecoder(resp.Body).Decode(&minted)
	resp.Body.Close()
	if decodeErr != nil || resp.StatusCode != 200 {
		return result{"clock cycle", resp.StatusCode, time.Since(start), true}
	}

	parsed, err := url.Parse(minted.URL)
	if err != nil {
		return result{"clock cycle", resp.StatusCode, time.Since(start), true}
	}
	verifyBody, _ := json.Marshal(map[string]string{"data": parsed.Query().Get("data")})
	resp, err = httpClient.Post(baseURL+"/clock/verify", "application/json", bytes.NewReader(verifyBody))
	if err != nil {
		return result{"clock cycle", 0, time.Since(start), true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode == 409 || resp.StatusCode == 423 {
		// another worker holds this employee's flow
		return result{"clock cycle", resp.StatusCode, time.Since(start), false}
	}
	if resp.StatusCode != 200 {
		return result{"clock cycle", resp.StatusCode, time.Since(start), true}
	}

	pinBody, _ := json.Marshal(map[string]string{"employeeId": emp, "pin": "1234"})
	resp, err = httpClient.Post(baseURL+"/clock/pin", "application/json", bytes.NewReader(pinBody))
	if err != nil {
		return result{"clock cycle", 0, time.Since(start), true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode != 200 {
		return result{"clock cycle", resp.StatusCode, time.Since(start), resp.StatusCode != 404}
	}

	photoBody, _ := json.Marshal(map[string]any{
		"employeeId": emp,
		"photo":      []byte{0xff, 0xd8, 0xff, 0xe0},
	})
	resp, err = httpClient.Post(baseURL+"/clock/photo", "application/json", bytes.NewReader(photoBody))
	lat := time.Since(start)
	if err != nil {
		return result{"clock cycle", 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{"clock cycle", resp.StatusCode, lat, resp.StatusCode != 200 && resp.StatusCode != 404}
}

func doListEmployees() result {
	start := time.Now()
	resp, err := httpClient.Get(baseURL + "/employees")
	lat := time.Since(start)
	if err != nil {
		return result{"GET /employees", 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{"GET /employees", resp.StatusCode, lat, resp.StatusCode != 200}
}

func doListShifts(rng *rand.Rand) result {
	emp := employeeIDs[rng.Intn(len(employeeIDs))]
	start := time.Now()
	resp, err := httpClient.Get(fmt.Sprintf("%s/shifts?employee=%s", baseURL, emp))
	lat := time.Since(start)
	if err != nil {
		return result{"GET /shifts", 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{"GET /shifts", resp.StatusCode, lat, resp.StatusCode != 200}
}

func doValidateShift(rng *rand.Rand) result {
	day := time.Date(2026, 3, 10, 6+rng.Intn(4), 0, 0, 0, time.UTC)
	body, _ := json.Marshal(map[string]any{
		"start":        day.Format(time.RFC3339),
		"end":          day.Add(time.Duration(4+rng.Intn(10)) * time.Hour).Format(time.RFC3339),
		"breakMinutes": rng.Intn(90),
	})
	start := time.Now()
	resp, err := httpClient.Post(baseURL+"/shifts/validate", "application/json", bytes.NewReader(body))
	lat := time.Since(start)
	if err != nil {
		return result{"POST /shifts/validate", 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{"POST /shifts/validate", resp.StatusCode, lat, resp.StatusCode != 200}
}

func doActiveShift(rng *rand.Rand) result {
	emp := employeeIDs[rng.Intn(len(employeeIDs))]
	start := time.Now()
	resp, err := httpClient.Get(fmt.Sprintf("%s/shifts/active?employee=%s", baseURL, emp))
	lat := time.Since(start)
	if err != nil {
		return result{"GET /shifts/active", 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	// 404 just means the employee is clocked out right now
	return result{"GET /shifts/active", resp.StatusCode, lat, resp.StatusCode != 200 && resp.StatusCode != 404}
}

func avgDuration(d []time.Duration) time.Duration {
	if len(d) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range d {
		sum += v
	}
	return sum / time.Duration(len(d))
}

func percentile(d []time.Duration, p float64) time.Duration {
	if len(d) == 0 {
		return 0
	}
	idx := int(float64(len(d)) * p)
	if idx >= len(d) {
		idx = len(d) - 1
	}
	return d[idx]
}

func fmtDur(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dus", d.Microseconds())
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
}

func repeat(s string, n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += s
	}
	return out
}
