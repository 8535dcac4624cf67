// Package main 提供 messenger 演示程序
//
// 模拟一个窗口排列工具：生产者周期性枚举窗口并应用布局，
// 订阅者分别以同步、后台和 UI 三种策略接收事件。UI 执行上下文在
// main goroutine 上运行。
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/dep2p/go-messenger"
	"github.com/dep2p/go-messenger/config"
	"github.com/dep2p/go-messenger/pkg/lib/log"
)

var logger = log.Logger("messenger/demo")

var (
	configFile = pflag.StringP("config", "c", "", "配置文件路径（.json / .yaml）")
	logLevel   = pflag.String("log-level", "", "日志级别 (debug/info/warn/error)")
	logFile    = pflag.String("log", "", "日志文件路径")
	count      = pflag.IntP("count", "n", 6, "发布轮数（0 = 直到收到退出信号）")
	interval   = pflag.Duration("interval", 500*time.Millisecond, "发布间隔")
	headless   = pflag.Bool("headless", false, "不创建 UI 执行上下文")

	showVersion = pflag.BoolP("version", "v", false, "显示版本信息")
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	pflag.Parse()

	if *showVersion {
		fmt.Println(messenger.VersionInfo())
		return nil
	}

	opts, err := buildOptions()
	if err != nil {
		return err
	}
	m, err := messenger.New(opts...)
	if err != nil {
		return fmt.Errorf("创建失败: %w", err)
	}
	defer func() { _ = m.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := m.Start(ctx); err != nil {
		return fmt.Errorf("启动失败: %w", err)
	}
	fmt.Printf("📦 %s\n", messenger.VersionInfo())

	arena := messenger.NewArena()
	arranger := newArranger(arena.Acquire())
	if err := arranger.wire(m); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		defer cancel()
		produce(ctx, m, arena, arranger)
	}()

	// UI 执行上下文在 main goroutine 上消费
	if loop := m.UILoop(); loop != nil {
		if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
	} else {
		<-ctx.Done()
	}

	fmt.Println("正在关闭...")
	return nil
}

// buildOptions 构建选项
//
// 优先级：命令行 > 环境变量 > 配置文件 > 默认值。
// 配置文件中的非法值会被修复为默认值。
func buildOptions() ([]messenger.Option, error) {
	var opts []messenger.Option

	path := *configFile
	if path == "" {
		path = os.Getenv("MESSENGER_CONFIG")
	}
	if path != "" {
		cfg, err := config.Read(path)
		if err != nil {
			return nil, err
		}
		if cfg, err = config.ValidateAndFix(cfg); err != nil {
			return nil, err
		}
		opts = append(opts, messenger.WithConfig(cfg))
	}

	level := *logLevel
	if level == "" {
		level = os.Getenv("MESSENGER_LOG_LEVEL")
	}
	if level != "" {
		opts = append(opts, messenger.WithLogLevel(level))
	}

	if *logFile != "" {
		opts = append(opts, messenger.WithLogFile(*logFile))
	}
	if *headless {
		opts = append(opts, messenger.WithHeadless())
	}
	return opts, nil
}

// produce 按间隔发布事件，过半后释放排列器，其订阅随后被清理
func produce(ctx context.Context, m *messenger.Messenger, arena *messenger.Arena, a *arranger) {
	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	windows := messenger.Event[WindowsEnumerated](m)
	applied := messenger.Event[LayoutApplied](m)
	released := false

	for round := 1; *count == 0 || round <= *count; round++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		list := enumerate(round)
		if err := windows.Publish(list); err != nil {
			logger.Warn("发布窗口列表失败", "error", err)
		}
		applied.Publish()

		layout := layouts[round%len(layouts)]
		if err := m.Named().HandleFrom(EventLayoutChanged, m, layout); err != nil {
			logger.Warn("具名事件处理失败", "event", EventLayoutChanged, "error", err)
		}

		if !released && *count > 0 && round >= *count/2 {
			if err := arena.Release(a.owner); err != nil {
				logger.Warn("释放排列器失败", "error", err)
			}
			released = true
			fmt.Println("排列器已释放，其订阅将在下一次发布时清理")
		}

		fmt.Printf("第 %d 轮: %d 个窗口, 总线 %v\n", round, len(list), m.Names())
	}
}
