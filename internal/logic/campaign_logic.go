package logic

import (
	"context"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/blues/campaignd/internal/chain"
	"github.com/blues/campaignd/internal/logger"
	"github.com/blues/campaignd/internal/model"
	"github.com/blues/campaignd/internal/store"
	"github.com/blues/campaignd/internal/wallet"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Recorder 持久化同步结果与交易流水
type Recorder interface {
	RecordTransaction(ctx context.Context, rec model.TxRecord) error
	SaveCampaigns(ctx context.Context, campaigns []model.Campaign) error
}

type nopRecorder struct{}

func (nopRecorder) RecordTransaction(context.Context, model.TxRecord) error { return nil }
func (nopRecorder) SaveCampaigns(context.Context, []model.Campaign) error   { return nil }

// Option 编排层可选项
type Option func(*CampaignLogic)

// WithRecorder 设置持久化记录器
func WithRecorder(r Recorder) Option {
	return func(l *CampaignLogic) {
		if r != nil {
			l.recorder = r
		}
	}
}

// CampaignLogic 活动编排层：本地校验、远程调用、确认等待与全量同步
type CampaignLogic struct {
	store      *store.CampaignStore
	wallet     wallet.Connector
	provider   *chain.Provider
	normalizer Normalizer
	recorder   Recorder
	locks      *keyedLocker
}

// NewCampaignLogic 创建活动编排层
func NewCampaignLogic(st *store.CampaignStore, w wallet.Connector, provider *chain.Provider, opts ...Option) *CampaignLogic {
	l := &CampaignLogic{
		store:    st,
		wallet:   w,
		provider: provider,
		recorder: nopRecorder{},
		locks:    newKeyedLocker(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// State 当前快照，叠加钱包的连接中/错误状态
func (l *CampaignLogic) State() model.State {
	st := l.store.Snapshot()
	st.Loading = st.Loading || l.wallet.IsConnecting()
	if st.Error == "" {
		st.Error = l.wallet.Err()
	}
	return st
}

// Address 当前连接的账户
func (l *CampaignLogic) Address() model.Address {
	return l.wallet.Address()
}

// Campaign 从本地镜像读取单个活动
func (l *CampaignLogic) Campaign(id int64) (model.Campaign, bool) {
	return l.store.Find(id)
}

// Restore 用持久化镜像预热本地集合，任何一次远端同步生效后不再覆盖
func (l *CampaignLogic) Restore(campaigns []model.Campaign) bool {
	_, applied := l.store.ReplaceFrom(0, campaigns)
	return applied
}

// Connect 连接钱包并预先初始化网关
func (l *CampaignLogic) Connect(ctx context.Context) error {
	if err := l.wallet.Connect(ctx); err != nil {
		return &ConnectionError{Message: "Failed to connect wallet", Err: err}
	}

	if _, err := l.gateway(ctx, l.wallet.Address()); err != nil {
		l.store.SetError(err.Error())
		return err
	}
	return nil
}

// GetCampaigns 从合约全量拉取活动并替换本地集合
func (l *CampaignLogic) GetCampaigns(ctx context.Context) ([]model.Campaign, error) {
	op := l.begin(OpList, newCampaignKey)
	defer op.end()

	gw, err := l.gateway(ctx, l.wallet.Address())
	if err != nil {
		return nil, op.fail(err)
	}

	campaigns, err := l.resync(ctx, gw)
	if err != nil {
		return nil, op.fail(&RemoteError{Op: OpList, Err: err})
	}

	op.log.Debug("Fetched %d campaigns", len(campaigns))
	return campaigns, nil
}

// CreateCampaign 创建活动；所有者始终为当前连接的账户，忽略表单中的 owner
func (l *CampaignLogic) CreateCampaign(ctx context.Context, form model.CampaignForm) error {
	unlock := l.locks.Lock(newCampaignKey)
	defer unlock()

	op := l.begin(OpCreate, newCampaignKey)
	defer op.end()

	owner := l.wallet.Address()
	input, err := validateCreate(owner, form)
	if err != nil {
		return op.fail(err)
	}

	if form.Owner != "" && model.NewAddress(form.Owner) != owner {
		op.log.Warn("Ignoring owner %s supplied in form, using connected account %s", form.Owner, owner)
	}

	err = l.execute(ctx, op, owner, func(gw chain.Gateway) (chain.PendingTx, error) {
		return gw.Create(ctx, owner, input.title, input.description, input.target.wei, input.deadline.UnixMilli(), input.image)
	})
	if err != nil {
		return op.fail(err)
	}

	op.log.Info("Campaign %q created by %s", input.title, owner)
	return nil
}

// Donate 向活动捐款
func (l *CampaignLogic) Donate(ctx context.Context, id int64, amount string) error {
	unlock := l.locks.Lock(id)
	defer unlock()

	op := l.begin(OpDonate, id)
	defer op.end()

	if _, ok := l.store.Find(id); !ok {
		return op.fail(invalid(ReasonNotFound, "Campaign not found"))
	}
	value, err := parseAmount(amount)
	if err != nil {
		return op.fail(invalid(ReasonInvalidAmount, "Invalid donation amount"))
	}

	caller := l.wallet.Address()
	err = l.execute(ctx, op, caller, func(gw chain.Gateway) (chain.PendingTx, error) {
		return gw.Donate(ctx, id, value.wei)
	})
	if err != nil {
		return op.fail(err)
	}

	op.log.Info("Donated %s to campaign %d from %s", value.amount, id, caller)
	return nil
}

// WithdrawFunds 所有者在达成目标后提取资金
func (l *CampaignLogic) WithdrawFunds(ctx context.Context, id int64) error {
	unlock := l.locks.Lock(id)
	defer unlock()

	op := l.begin(OpWithdraw, id)
	defer op.end()

	caller := l.wallet.Address()
	if err := l.validateWithdraw(id, caller); err != nil {
		return op.fail(err)
	}

	err := l.execute(ctx, op, caller, func(gw chain.Gateway) (chain.PendingTx, error) {
		return gw.Withdraw(ctx, id)
	})
	if err != nil {
		return op.fail(err)
	}

	op.log.Info("Funds withdrawn from campaign %d", id)
	return nil
}

// DeleteCampaign 所有者删除尚未收到捐款的活动
func (l *CampaignLogic) DeleteCampaign(ctx context.Context, id int64) error {
	unlock := l.locks.Lock(id)
	defer unlock()

	op := l.begin(OpDelete, id)
	defer op.end()

	caller := l.wallet.Address()
	if err := l.validateDelete(id, caller); err != nil {
		return op.fail(err)
	}

	err := l.execute(ctx, op, caller, func(gw chain.Gateway) (chain.PendingTx, error) {
		return gw.Delete(ctx, id)
	})
	if err != nil {
		return op.fail(err)
	}

	op.log.Info("Campaign %d deleted", id)
	return nil
}

func (l *CampaignLogic) validateWithdraw(id int64, caller model.Address) error {
	c, ok := l.store.Find(id)
	switch {
	case !ok:
		return invalid(ReasonNotFound, "Campaign not found")
	case c.Withdrawn:
		return invalid(ReasonAlreadyWithdrawn, "Funds have already been withdrawn")
	case caller.IsZero():
		return errNotConnected
	case caller != c.Owner:
		return invalid(ReasonNotOwner, "Only campaign owner can withdraw funds")
	case !c.GoalReached():
		return invalid(ReasonGoalNotReached, "Funding goal has not been reached")
	}
	return nil
}

func (l *CampaignLogic) validateDelete(id int64, caller model.Address) error {
	c, ok := l.store.Find(id)
	switch {
	case !ok:
		return invalid(ReasonNotFound, "Campaign not found")
	case caller.IsZero():
		return errNotConnected
	case caller != c.Owner:
		return invalid(ReasonNotOwner, "Only campaign owner can delete campaign")
	case !c.AmountCollected.IsZero():
		return invalid(ReasonHasDonations, "Cannot delete campaign with donations")
	case c.Withdrawn:
		return invalid(ReasonAlreadyWithdrawn, "Cannot delete campaign after withdraw")
	}
	return nil
}

// execute 初始化网关、发送交易、等待确认并全量同步
func (l *CampaignLogic) execute(ctx context.Context, op *operation, caller model.Address, send func(chain.Gateway) (chain.PendingTx, error)) error {
	gw, err := l.gateway(ctx, caller)
	if err != nil {
		return err
	}

	tx, err := send(gw)
	if err != nil {
		return &RemoteError{Op: op.name, Err: err}
	}
	op.record(ctx, caller, tx.Hash(), model.TxStatusPending, nil)

	if err := tx.Wait(ctx); err != nil {
		op.record(ctx, caller, tx.Hash(), model.TxStatusFailed, err)
		return &RemoteError{Op: op.name, Err: err}
	}
	op.record(ctx, caller, tx.Hash(), model.TxStatusConfirmed, nil)

	if _, err := l.resync(ctx, gw); err != nil {
		return &RemoteError{Op: op.name, Err: err}
	}
	return nil
}

// gateway 惰性获取网关
func (l *CampaignLogic) gateway(ctx context.Context, account model.Address) (chain.Gateway, error) {
	if account.IsZero() {
		return nil, errNotConnected
	}

	gw, err := l.provider.Get(ctx, account)
	if err != nil {
		return nil, &ConnectionError{Message: "Failed to initialize contract", Err: err}
	}
	return gw, nil
}

// resync 全量拉取、转换并整体替换本地集合。
// 票据在拉取前领取；若期间已有更晚开始的拉取生效，本次结果作废并返回当前集合。
func (l *CampaignLogic) resync(ctx context.Context, gw chain.Gateway) ([]model.Campaign, error) {
	ticket := l.store.Ticket()
	raws, err := gw.List(ctx)
	if err != nil {
		return nil, err
	}

	campaigns, err := l.normalizer.NormalizeAll(raws)
	if err != nil {
		return nil, err
	}

	previous, applied := l.store.ReplaceFrom(ticket, campaigns)
	if !applied {
		logger.Debug("Dropped stale campaign list (ticket %d)", ticket)
		return l.store.Campaigns(), nil
	}
	for _, issue := range detectRegressions(previous, campaigns) {
		logger.Warn("Remote state regression: %s", issue)
	}

	if err := l.recorder.SaveCampaigns(ctx, campaigns); err != nil {
		logger.Error("Failed to persist campaign mirror: %v", err)
	}
	return campaigns, nil
}

// operation 单次调用的上下文：请求 id、日志与 loading 标志的释放
type operation struct {
	logic      *CampaignLogic
	name       Operation
	campaignID int64
	requestID  string
	log        *logger.Logger
}

func (l *CampaignLogic) begin(name Operation, campaignID int64) *operation {
	l.store.Begin()

	requestID := uuid.NewString()
	return &operation{
		logic:      l,
		name:       name,
		campaignID: campaignID,
		requestID:  requestID,
		log: logger.With(
			zap.String("request_id", requestID),
			zap.String("op", string(name)),
			zap.Int64("campaign_id", campaignID),
		),
	}
}

func (o *operation) end() {
	o.logic.store.End()
}

func (o *operation) fail(err error) error {
	o.logic.store.SetError(err.Error())
	o.log.Warn("Operation failed: %v", err)
	return err
}

func (o *operation) record(ctx context.Context, account model.Address, hash string, status model.TxStatus, txErr error) {
	rec := model.TxRecord{
		RequestID:  o.requestID,
		Operation:  string(o.name),
		CampaignID: o.campaignID,
		Account:    account,
		TxHash:     hash,
		Status:     status,
		UpdatedAt:  time.Now(),
	}
	if txErr != nil {
		rec.Error = txErr.Error()
	}
	if err := o.logic.recorder.RecordTransaction(ctx, rec); err != nil {
		o.log.Error("Failed to record transaction %s: %v", hash, err)
	}
}

type etherAmount struct {
	amount string
	wei    *big.Int
}

func parseAmount(s string) (etherAmount, error) {
	wei, err := model.ParseEther(s)
	if err != nil {
		return etherAmount{}, err
	}
	return etherAmount{amount: model.FormatEther(wei).String(), wei: wei}, nil
}

type createInput struct {
	title       string
	description string
	image       string
	target      etherAmount
	deadline    time.Time
}

func validateCreate(owner model.Address, form model.CampaignForm) (createInput, error) {
	if owner.IsZero() {
		return createInput{}, errNotConnected
	}

	fields := []struct {
		name  string
		value string
	}{
		{"Title", form.Title},
		{"Description", form.Description},
		{"Target", form.Target},
		{"Deadline", form.Deadline},
		{"Image", form.Image},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return createInput{}, invalid(ReasonMissingField, f.name+" is required")
		}
	}

	target, err := parseAmount(form.Target)
	if err != nil {
		return createInput{}, invalid(ReasonInvalidAmount, "Invalid target amount")
	}

	deadline, err := parseDeadline(form.Deadline)
	if err != nil {
		return createInput{}, invalid(ReasonInvalidDeadline, "Invalid deadline")
	}

	return createInput{
		title:       form.Title,
		description: form.Description,
		image:       form.Image,
		target:      target,
		deadline:    deadline,
	}, nil
}

// parseDeadline 支持日期(2006-01-02，按UTC)、RFC3339 与毫秒时间戳
func parseDeadline(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}

	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	if ms < 0 {
		return time.Time{}, strconv.ErrRange
	}
	return time.UnixMilli(ms).UTC(), nil
}
