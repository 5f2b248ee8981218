package benchmark

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-resty/resty/v2"

	"github.com/Shefo-AMI/PropertyPro-UAE/internal/app/routes"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/domain/services/container"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/infrastructure/config"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/infrastructure/database"
)

// TestConfig 测试配置，BENCH_BASE_URL 为空时在进程内启动服务
type TestConfig struct {
	BaseURL     string
	Concurrency int
	Requests    int
}

var cfg TestConfig

// TestMain 准备被测服务
func TestMain(m *testing.M) {
	cfg = TestConfig{
		BaseURL:     os.Getenv("BENCH_BASE_URL"),
		Concurrency: 10,
		Requests:    100,
	}

	var cleanup func()
	if cfg.BaseURL == "" {
		var err error
		if cfg.BaseURL, cleanup, err = startLocalServer(); err != nil {
			fmt.Printf("启动本地服务失败: %v\n", err)
			os.Exit(1)
		}
	}

	code := m.Run()
	if cleanup != nil {
		cleanup()
	}
	os.Exit(code)
}

// startLocalServer 使用临时 sqlite 数据库与内存文件存储启动服务
func startLocalServer() (string, func(), error) {
	gin.SetMode(gin.ReleaseMode)
	dir, err := os.MkdirTemp("", "propertypro-bench")
	if err != nil {
		return "", nil, err
	}

	appCfg := &config.Config{
		DBDriver:         "sqlite",
		DBName:           filepath.Join(dir, "bench.db") + "?_busy_timeout=5000",
		JWTSecretKey:     "bench-secret",
		JWTIssuer:        "propertypro",
		AuthDevLogin:     true,
		TokenLifetime:    time.Hour,
		TriageTimeout:    time.Second,
		AssistantTimeout: time.Second,
		UploadMaxBytes:   1 << 20,
		BlobDriver:       "memory",
	}
	pool, err := database.NewConnectionPool(appCfg)
	if err != nil {
		return "", nil, err
	}
	if err := database.Migrate(pool.DB, database.MigrationAuto); err != nil {
		return "", nil, err
	}

	srv := httptest.NewServer(routes.SetupRouter(container.NewServiceContainer(container.Dependencies{
		DB:     pool.DB,
		Config: appCfg,
	})))
	return srv.URL + "/api", func() {
		srv.Close()
		_ = pool.Close()
		_ = os.RemoveAll(dir)
	}, nil
}

// newAccount 每个用例使用独立账号，避免按用户限流互相影响
func newAccount(t *testing.T, email string) (token, companyID string) {
	t.Helper()
	client := resty.New().SetBaseURL(cfg.BaseURL)

	var login struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	resp, err := client.R().
		SetBody(map[string]string{"email": email}).
		SetResult(&login).
		Post("/auth/login")
	if err != nil {
		t.Fatalf("登录失败: %v", err)
	}
	if resp.StatusCode() != http.StatusOK || login.Data.Token == "" {
		t.Fatalf("登录失败: %s", resp.Status())
	}

	var company struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	resp, err = client.R().
		SetAuthToken(login.Data.Token).
		SetBody(map[string]string{"name": "Benchmark Holdings"}).
		SetResult(&company).
		Post("/companies")
	if err != nil {
		t.Fatalf("创建公司失败: %v", err)
	}
	if resp.StatusCode() != http.StatusCreated {
		t.Fatalf("创建公司失败: %s", resp.Status())
	}
	return login.Data.Token, company.Data.ID
}

// check 只把非 2xx、非 429 的响应视为失败
func check(t *testing.T, name string, result *BenchmarkResult) {
	t.Helper()
	result.PrintResult()
	if result.FailureCount > 0 {
		t.Errorf("%s 接口测试失败: 成功率 %.2f%%", name, float64(result.SuccessCount)/float64(result.TotalRequests)*100)
	}
	if result.SuccessCount == 0 {
		t.Errorf("%s 接口没有成功的请求", name)
	}
}

// TestCompanyList 测试公司列表接口
func TestCompanyList(t *testing.T) {
	token, _ := newAccount(t, "bench-list@example.com")
	b := NewAPIBenchmark(cfg.BaseURL, cfg.Concurrency, cfg.Requests, token)
	check(t, "公司列表", b.RunGET("/companies"))
}

// TestCompanyStats 测试公司统计接口
func TestCompanyStats(t *testing.T) {
	token, companyID := newAccount(t, "bench-stats@example.com")
	b := NewAPIBenchmark(cfg.BaseURL, cfg.Concurrency, cfg.Requests, token)
	check(t, "公司统计", b.RunGET("/companies/"+companyID+"/stats"))
}

// TestCalendarGrid 测试日历月视图接口
func TestCalendarGrid(t *testing.T) {
	token, companyID := newAccount(t, "bench-calendar@example.com")
	b := NewAPIBenchmark(cfg.BaseURL, cfg.Concurrency, cfg.Requests, token)
	check(t, "日历月视图", b.RunGET("/calendar-events/company/"+companyID+"/grid?year=2025&month=3"))
}

// TestAssistantThrottled 助手接口单独限流，突发之后应出现 429
func TestAssistantThrottled(t *testing.T) {
	token, _ := newAccount(t, "bench-assistant@example.com")
	b := NewAPIBenchmark(cfg.BaseURL, 5, 20, token)
	result := b.RunPOST("/assistant", map[string]string{"question": "How many units are vacant?"})
	result.PrintResult()

	if result.FailureCount > 0 {
		t.Errorf("助手接口出现非限流错误: %v", result.StatusCodes)
	}
	if result.ThrottledCount == 0 {
		t.Errorf("助手接口未触发限流: %v", result.StatusCodes)
	}
}
