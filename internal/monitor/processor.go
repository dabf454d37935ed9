package monitor

import (
	"math/big"

	"github.com/blues/campaignd/internal/logger"
	"github.com/blues/campaignd/internal/model"
)

// Processor 单类事件的处理器，返回是否需要全量同步
type Processor interface {
	Process(ev model.ContractEvent) bool
}

// ProcessorFunc 函数形式的处理器
type ProcessorFunc func(ev model.ContractEvent) bool

func (f ProcessorFunc) Process(ev model.ContractEvent) bool {
	return f(ev)
}

// defaultProcessors 众筹合约四类事件的处理器
func defaultProcessors() map[string]Processor {
	return map[string]Processor{
		"CampaignCreated": ProcessorFunc(func(ev model.ContractEvent) bool {
			logger.Info("Campaign %d created by %v with target %s ETH", ev.CampaignID, ev.Data["owner"], etherField(ev, "target"))
			return true
		}),
		"DonationReceived": ProcessorFunc(func(ev model.ContractEvent) bool {
			logger.Info("Campaign %d received %s ETH from %v", ev.CampaignID, etherField(ev, "amount"), ev.Data["donator"])
			return true
		}),
		"FundsWithdrawn": ProcessorFunc(func(ev model.ContractEvent) bool {
			logger.Info("Campaign %d withdrew %s ETH to %v", ev.CampaignID, etherField(ev, "amount"), ev.Data["owner"])
			return true
		}),
		"CampaignDeleted": ProcessorFunc(func(ev model.ContractEvent) bool {
			logger.Info("Campaign %d deleted", ev.CampaignID)
			return true
		}),
	}
}

func etherField(ev model.ContractEvent, name string) string {
	v, _ := ev.Data[name].(*big.Int)
	return model.FormatEther(v).String()
}
