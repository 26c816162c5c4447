package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/atomic"

	"opa/cartsync/internal/cart"
	"opa/cartsync/internal/pipeline"
	"opa/cartsync/pkg/config"
	"opa/cartsync/pkg/infra/mysql"
	"opa/cartsync/pkg/infra/redis"
	"opa/cartsync/pkg/logger"
)

var (
	configPath   = flag.String("config", "./config/cartsync.yaml", "配置文件路径")
	mode         = flag.String("mode", pipeline.ModeSubmit, "运行模式: export-all / export-workbook / submit / scrape")
	workbook     = flag.String("workbook", "", "待加购工作簿路径（submit 模式，留空取目录内最新）")
	linksPath    = flag.String("links", "./data/pasted_links.txt", "链接清单路径（scrape 模式）")
	purchaseType = flag.String("purchase-type", "wholesale", "加购方式: wholesale / consign")
)

func main() {
	flag.Parse()

	// 1. 载入 .env（不存在不报错，Cookie 也可直接来自进程环境）
	_ = godotenv.Load()

	// 2. 加载配置
	log.Println("========================================")
	log.Println("  CartSync Starting...")
	log.Println("========================================")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Config validation failed: %v", err)
	}
	log.Printf("Config loaded: %s, env: %s, mode: %s\n", cfg.App.Name, cfg.App.Env, *mode)

	// 3. 初始化 Logger
	zapLogger, err := logger.NewZapLogger(cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zapLogger.Sync()

	// 4. 可选基础设施：运行记录库与完成通知
	var runDAO *mysql.RunDAO
	if cfg.MySQL.Enabled {
		runDAO, err = mysql.NewRunDAO(cfg.MySQL.DSN)
		if err != nil {
			log.Fatalf("Failed to init run store: %v", err)
		}
		defer runDAO.Close()
	}

	var pubsub *redis.PubSub
	if cfg.Redis.Enabled {
		pubsub, err = redis.NewPubSub(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatalf("Failed to init redis: %v", err)
		}
		defer pubsub.Close()
	}

	// 5. 运行上下文：run_id + mode 注入日志字段，信号触发取消
	ctx := context.WithValue(context.Background(), "run_id", uuid.NewString())
	ctx = context.WithValue(ctx, "mode", *mode)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	interrupted := atomic.NewBool(false)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Printf("Received signal: %v, cancelling...\n", sig)
		interrupted.Store(true)
		cancel()
	}()

	// 6. 运行管线
	p := pipeline.New(cfg, zapLogger, runDAO, pubsub)

	switch *mode {
	case pipeline.ModeExportAll:
		err = p.RunExportAll(ctx)
	case pipeline.ModeExportWorkbook:
		err = p.RunExportWorkbook(ctx)
	case pipeline.ModeSubmit:
		err = p.RunSubmit(ctx, *workbook, resolvePurchaseType(*purchaseType))
	case pipeline.ModeScrape:
		err = p.RunScrape(ctx, *linksPath)
	default:
		log.Fatalf("Unknown mode: %s", *mode)
	}

	if err != nil {
		zapLogger.Errorf(ctx, "[Main] Run failed: %v", err)
		zapLogger.Sync()
		os.Exit(1)
	}
	if interrupted.Load() {
		log.Println("Run interrupted by signal")
		os.Exit(130)
	}

	log.Println("========================================")
	log.Println("  CartSync finished")
	log.Println("========================================")
}

// resolvePurchaseType 将命令行取值映射为接口参数
func resolvePurchaseType(v string) string {
	if v == "consign" {
		return cart.PurchaseConsign
	}
	return cart.PurchaseWholesale
}
