package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/blues/campaignd/internal/chain"
	"github.com/blues/campaignd/internal/config"
	"github.com/blues/campaignd/internal/handler"
	"github.com/blues/campaignd/internal/logger"
	"github.com/blues/campaignd/internal/logic"
	"github.com/blues/campaignd/internal/model"
	"github.com/blues/campaignd/internal/monitor"
	"github.com/blues/campaignd/internal/repository"
	"github.com/blues/campaignd/internal/router"
	"github.com/blues/campaignd/internal/scheduler"
	"github.com/blues/campaignd/internal/store"
	"github.com/blues/campaignd/internal/wallet"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// App 组装好的服务组件
type App struct {
	Config   *config.Config
	Logic    *logic.CampaignLogic
	Provider *chain.Provider
	Ledger   *chain.MemoryLedger // 仅 memory 链类型

	db        *gorm.DB
	campaigns *repository.CampaignRepository
	events    *repository.EventRepository
	monitor   *monitor.EventMonitor
	client    *ethclient.Client
}

// New 按配置组装 钱包 → 网关 → 存储 → 编排层，以及可选的数据库与事件监控
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{Config: cfg}

	connector, signer := newWallet(cfg.Chain)

	var factory chain.Factory
	switch cfg.Chain.ChainType {
	case config.ChainTypeMemory:
		app.Ledger = chain.NewMemoryLedger()
		factory = chain.NewMemoryFactory(app.Ledger)
	case config.ChainTypeEthereum:
		factory = chain.NewEthereumFactory(cfg.Chain, signer)
	default:
		return nil, fmt.Errorf("unsupported chain type %q", cfg.Chain.ChainType)
	}
	app.Provider = chain.NewProvider(factory)

	var opts []logic.Option
	if cfg.Database.Enabled {
		db, err := repository.Init(cfg.Database)
		if err != nil {
			return nil, err
		}
		app.db = db
		app.campaigns = repository.NewCampaignRepository(db)
		app.events = repository.NewEventRepository(db)
		opts = append(opts, logic.WithRecorder(app.campaigns))
		logger.Info("Database persistence enabled (%s:%d/%s)", cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)
	}

	app.Logic = logic.NewCampaignLogic(store.New(), connector, app.Provider, opts...)
	if app.campaigns != nil {
		warmStart(ctx, app.Logic, app.campaigns)
	}

	if cfg.Chain.ChainType == config.ChainTypeEthereum {
		if err := app.initMonitor(ctx); err != nil {
			app.Close()
			return nil, err
		}
	}

	return app, nil
}

// campaignMirror 持久化的活动镜像
type campaignMirror interface {
	ListCampaigns(ctx context.Context) ([]model.Campaign, error)
}

// warmStart 在首次远端同步前用镜像填充本地集合，失败只记录日志
func warmStart(ctx context.Context, l *logic.CampaignLogic, mirror campaignMirror) {
	campaigns, err := mirror.ListCampaigns(ctx)
	if err != nil {
		logger.Warn("Failed to load campaign mirror: %v", err)
		return
	}
	if l.Restore(campaigns) {
		logger.Info("Restored %d campaigns from mirror", len(campaigns))
	}
}

// newWallet 配置了私钥时使用私钥钱包，否则使用只读的固定地址钱包
func newWallet(cfg config.ChainConfig) (wallet.Connector, wallet.Signer) {
	if cfg.PrivateKey != "" {
		keyed := wallet.NewKeyedConnector(cfg.PrivateKey)
		return keyed, keyed
	}
	return wallet.NewStaticConnector(cfg.Address), nil
}

func (a *App) initMonitor(ctx context.Context) error {
	contract, err := chain.NewContract(a.Config.Chain.Contract)
	if err != nil {
		return fmt.Errorf("failed to create contract: %w", err)
	}

	client, err := ethclient.DialContext(ctx, a.Config.Chain.RpcUrl)
	if err != nil {
		return fmt.Errorf("failed to connect monitor client: %w", err)
	}
	a.client = client

	var events monitor.EventStore
	if a.events != nil {
		events = a.events
	}

	refresh := func(ctx context.Context) error {
		_, err := a.Logic.GetCampaigns(ctx)
		return err
	}

	a.monitor, err = monitor.NewEventMonitor(client, contract, events, refresh, monitor.Options{
		BatchSize: a.Config.Task.BatchSize,
		PoolSize:  a.Config.Task.PoolSize,
	})
	return err
}

// Connect 连接钱包并初始化网关
func (a *App) Connect(ctx context.Context) error {
	return a.Logic.Connect(ctx)
}

// Router 构建 HTTP 路由
func (a *App) Router() *gin.Engine {
	var history *handler.HistoryHandler
	if a.campaigns != nil {
		history = handler.NewHistoryHandler(a.campaigns, a.events)
	}
	return router.Setup(handler.NewCampaignHandler(a.Logic), history)
}

// Scheduler 注册周期同步与事件轮询任务
func (a *App) Scheduler() (*scheduler.Manager, error) {
	m, err := scheduler.NewManager()
	if err != nil {
		return nil, err
	}

	if a.Config.Task.Interval > 0 {
		interval := time.Duration(a.Config.Task.Interval) * time.Second
		if err := m.Register(scheduler.NewCampaignSyncJob(a.Logic, interval)); err != nil {
			return nil, err
		}
	}

	if a.monitor != nil && a.Config.Task.MonitorInterval > 0 {
		interval := time.Duration(a.Config.Task.MonitorInterval) * time.Second
		if err := m.Register(scheduler.NewEventPollJob(a.monitor, interval)); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// Close 释放网关、监控与数据库连接
func (a *App) Close() {
	if a.Provider != nil {
		a.Provider.Close()
	}
	if a.monitor != nil {
		a.monitor.Close()
	}
	if a.client != nil {
		a.client.Close()
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
