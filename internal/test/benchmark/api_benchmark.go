package benchmark

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

// APIBenchmark 定义API基准测试结构
type APIBenchmark struct {
	BaseURL     string
	Concurrency int
	Requests    int
	AuthToken   string
	Client      *resty.Client
}

// BenchmarkResult 定义基准测试结果
type BenchmarkResult struct {
	URL            string        `json:"url"`
	Method         string        `json:"method"`
	Concurrency    int           `json:"concurrency"`
	TotalRequests  int           `json:"total_requests"`
	SuccessCount   int           `json:"success_count"`
	ThrottledCount int           `json:"throttled_count"` // 被限流 (429)
	FailureCount   int           `json:"failure_count"`
	TotalTime      time.Duration `json:"total_time"`
	AverageTime    time.Duration `json:"average_time"`
	MinTime        time.Duration `json:"min_time"`
	MaxTime        time.Duration `json:"max_time"`
	RequestsPerSec float64       `json:"requests_per_sec"`
	StatusCodes    map[int]int   `json:"status_codes"`
	Errors         []string      `json:"errors"`
}

// RequestResult 定义单个请求的结果
type RequestResult struct {
	Duration   time.Duration
	StatusCode int
	Error      error
}

// NewAPIBenchmark 创建新的API基准测试实例
func NewAPIBenchmark(baseURL string, concurrency, requests int, authToken string) *APIBenchmark {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10*time.Second).
		SetHeader("Content-Type", "application/json")
	if authToken != "" {
		client.SetAuthToken(authToken)
	}
	return &APIBenchmark{
		BaseURL:     baseURL,
		Concurrency: concurrency,
		Requests:    requests,
		AuthToken:   authToken,
		Client:      client,
	}
}

// RunGET 执行GET请求的基准测试
func (b *APIBenchmark) RunGET(path string) *BenchmarkResult {
	return b.runTest(http.MethodGet, path, nil)
}

// RunPOST 执行POST请求的基准测试
func (b *APIBenchmark) RunPOST(path string, payload interface{}) *BenchmarkResult {
	return b.runTest(http.MethodPost, path, payload)
}

// runTest 以固定并发发出 Requests 个请求并汇总耗时
func (b *APIBenchmark) runTest(method, path string, payload interface{}) *BenchmarkResult {
	results := make(chan RequestResult, b.Requests)
	var wg sync.WaitGroup
	limiter := make(chan struct{}, b.Concurrency)

	startTime := time.Now()

	for i := 0; i < b.Requests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			limiter <- struct{}{}
			defer func() { <-limiter }()

			start := time.Now()
			req := b.Client.R()
			if payload != nil {
				req.SetBody(payload)
			}
			resp, err := req.Execute(method, path)
			if err != nil {
				results <- RequestResult{Error: err}
				return
			}
			results <- RequestResult{
				Duration:   time.Since(start),
				StatusCode: resp.StatusCode(),
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var minTime time.Duration = 1<<63 - 1
	var maxTime, totalTime time.Duration
	result := &BenchmarkResult{
		URL:           b.BaseURL + path,
		Method:        method,
		Concurrency:   b.Concurrency,
		TotalRequests: b.Requests,
		StatusCodes:   make(map[int]int),
	}

	for r := range results {
		if r.Error != nil {
			result.FailureCount++
			result.Errors = append(result.Errors, r.Error.Error())
			continue
		}

		totalTime += r.Duration
		if r.Duration < minTime {
			minTime = r.Duration
		}
		if r.Duration > maxTime {
			maxTime = r.Duration
		}

		result.StatusCodes[r.StatusCode]++
		switch {
		case r.StatusCode >= 200 && r.StatusCode < 300:
			result.SuccessCount++
		case r.StatusCode == http.StatusTooManyRequests:
			result.ThrottledCount++
		default:
			result.FailureCount++
		}
	}

	result.TotalTime = time.Since(startTime)
	result.RequestsPerSec = float64(b.Requests) / result.TotalTime.Seconds()
	if answered := b.Requests - len(result.Errors); answered > 0 {
		result.AverageTime = totalTime / time.Duration(answered)
		result.MinTime = minTime
	}
	result.MaxTime = maxTime
	return result
}

// PrintResult 打印基准测试结果
func (r *BenchmarkResult) PrintResult() {
	fmt.Printf("基准测试结果:\n")
	fmt.Printf("URL: %s %s\n", r.Method, r.URL)
	fmt.Printf("并发数: %d, 总请求数: %d\n", r.Concurrency, r.TotalRequests)
	fmt.Printf("成功: %d, 限流: %d, 失败: %d\n", r.SuccessCount, r.ThrottledCount, r.FailureCount)
	fmt.Printf("总耗时: %s, 平均: %s, 最小: %s, 最大: %s\n", r.TotalTime, r.AverageTime, r.MinTime, r.MaxTime)
	fmt.Printf("每秒请求数: %.2f\n", r.RequestsPerSec)
	for code, count := range r.StatusCodes {
		fmt.Printf("  %d: %d\n", code, count)
	}
	for i, err := range r.Errors {
		if i >= 5 {
			fmt.Printf("  ... 还有 %d 个错误\n", len(r.Errors)-5)
			break
		}
		fmt.Printf("  %s\n", err)
	}
}
