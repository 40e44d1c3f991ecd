package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/dreamingspires/mat-dp-pipeline/internal/config"
	"github.com/dreamingspires/mat-dp-pipeline/internal/exporter"
	"github.com/dreamingspires/mat-dp-pipeline/internal/importer"
	"github.com/dreamingspires/mat-dp-pipeline/internal/model"
	"github.com/dreamingspires/mat-dp-pipeline/internal/pipeline"
	"github.com/dreamingspires/mat-dp-pipeline/internal/resolver"
	"github.com/dreamingspires/mat-dp-pipeline/internal/server"
	"github.com/dreamingspires/mat-dp-pipeline/internal/store"
)

var (
	source      = flag.String("source", "", "标准布局数据目录")
	materials   = flag.String("materials", "", "材料数据库工作簿 (.xlsx)，与 --targets 组合使用")
	targetsCSV  = flag.String("targets", "", "TMBA 结果文件 (.csv)，与 --materials 组合使用")
	tmbaParams  = flag.String("tmba-parameters", "Power Generation (Aggregate)", "TMBA 中保留的 parameter，逗号分隔")
	sdfOutput   = flag.String("sdf-output", "", "将组装后的标准布局写出到该目录")
	output      = flag.String("output", "", "将计算结果导出为工作簿 (.xlsx)")
	skipInvalid = flag.Bool("skip-invalid", false, "校验失败的叶子仅记录问题并跳过，而非中止运行")
	workers     = flag.Int("workers", 0, "叶子级并行度 (覆盖配置文件，<= 0 按 CPU 核数)")
	serve       = flag.Bool("serve", false, "启动查询服务")
	port        = flag.Int("port", 0, "服务端口 (覆盖配置文件)")
	devMode     = flag.Bool("dev", false, "开发模式")
	dataDir     = flag.String("dataDir", "", "数据目录 (覆盖配置文件)")
)

func main() {
	flag.Parse()

	fmt.Println("==========================================")
	fmt.Println("  Mat-DP Pipeline - 材料需求与排放核算工具")
	fmt.Println("==========================================")

	// 加载配置
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Printf("加载配置失败，使用默认配置: %v", err)
		cfg = config.DefaultConfig()
	}

	// 命令行参数覆盖配置
	if *port > 0 {
		cfg.Server.Port = *port
	}
	if *devMode {
		cfg.Server.DevMode = true
	}
	if *dataDir != "" {
		cfg.Data.DataDir = *dataDir
	}
	if *workers > 0 {
		cfg.Pipeline.Workers = *workers
	}
	if *skipInvalid {
		cfg.Pipeline.Strict = false
	}

	if *source == "" && *materials == "" && !*serve {
		flag.Usage()
		os.Exit(2)
	}

	if *source != "" || *materials != "" {
		if err := runPipeline(cfg); err != nil {
			log.Fatalf("运行失败: %v", err)
		}
	}

	if *serve {
		runServer(cfg)
	}
}

// runPipeline 组装层级、执行计算并持久化结果
func runPipeline(cfg *config.AppConfig) error {
	root, issues, err := buildHierarchy()
	if err != nil {
		return err
	}
	for _, issue := range issues {
		log.Printf("载入警告: %v", issue)
	}
	fmt.Printf("已载入层级，共 %d 个叶子\n", root.LeafCount())

	if *sdfOutput != "" {
		if err := exporter.SaveHierarchy(root, *sdfOutput); err != nil {
			return fmt.Errorf("写出标准布局失败: %w", err)
		}
		fmt.Printf("标准布局已写出: %s\n", *sdfOutput)
	}

	mode := resolver.AbortOnInvalidLeaf
	if !cfg.Pipeline.Strict {
		mode = resolver.SkipInvalidLeaf
	}
	index, err := pipeline.Run(root, pipeline.Options{
		FailureMode: mode,
		Workers:     cfg.Pipeline.Workers,
	})
	if err != nil {
		return err
	}
	fmt.Println(pipeline.Describe(index))
	for _, issue := range index.Issues() {
		log.Printf("运行警告: %v", issue)
	}

	// 结果落库
	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		return fmt.Errorf("创建数据目录失败: %w", err)
	}
	db, err := store.New(filepath.Join(dataDir, "matdp.db"))
	if err != nil {
		return fmt.Errorf("初始化数据库失败: %w", err)
	}
	defer db.Close()

	runID, err := db.SaveRun(index, describeSource())
	if err != nil {
		return fmt.Errorf("保存运行结果失败: %w", err)
	}
	fmt.Printf("运行结果已保存: %s\n", runID)

	if *output != "" {
		if err := exporter.ExportWorkbook(index, *output); err != nil {
			return fmt.Errorf("导出工作簿失败: %w", err)
		}
		fmt.Printf("结果工作簿已导出: %s\n", *output)
	}
	return nil
}

// buildHierarchy 按参数组装层级：
// --source 直接载入标准布局；--materials + --targets 从原始数据源组装
func buildHierarchy() (*model.Node, []model.Issue, error) {
	if *source != "" {
		return importer.Load(*source)
	}
	if *targetsCSV == "" {
		return nil, nil, fmt.Errorf("--materials 需要配合 --targets 使用")
	}
	var params []string
	for _, p := range strings.Split(*tmbaParams, ",") {
		if p = strings.TrimSpace(p); p != "" {
			params = append(params, p)
		}
	}
	return importer.CreateHierarchy(
		importer.MaterialsIntensitiesSource{WorkbookPath: *materials},
		importer.MaterialsIndicatorsSource{WorkbookPath: *materials},
		importer.TMBATargetsSource{CSVPath: *targetsCSV, Parameters: params},
	)
}

func describeSource() string {
	if *source != "" {
		return *source
	}
	return fmt.Sprintf("%s + %s", *materials, *targetsCSV)
}

// runServer 启动查询服务并等待退出信号
func runServer(cfg *config.AppConfig) {
	srv := server.NewServer(cfg)
	addr := fmt.Sprintf(":%d", cfg.Server.Port)

	go func() {
		fmt.Printf("服务启动中，监听端口 %d ...\n", cfg.Server.Port)
		if err := srv.Run(addr); err != nil {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	fmt.Println("\n按 Ctrl+C 停止服务...")
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	fmt.Println("\n正在关闭服务...")
}
