package chain

import (
	"context"
	"math/big"

	"github.com/blues/campaignd/internal/model"
)

// Gateway 众筹合约的远程调用接口
type Gateway interface {
	List(ctx context.Context) ([]model.RawCampaign, error)
	Create(ctx context.Context, owner model.Address, title, description string, target *big.Int, deadline int64, image string) (PendingTx, error)
	Donate(ctx context.Context, id int64, amount *big.Int) (PendingTx, error)
	Withdraw(ctx context.Context, id int64) (PendingTx, error)
	Delete(ctx context.Context, id int64) (PendingTx, error)
}

// PendingTx 已提交、尚未确认的交易
type PendingTx interface {
	Hash() string
	// Wait 阻塞直到交易确认或失败
	Wait(ctx context.Context) error
}

// Closer 持有连接的网关实现该接口
type Closer interface {
	Close()
}
