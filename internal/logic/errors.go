package logic

import "fmt"

// Operation 编排层对外提供的操作
type Operation string

const (
	OpList     Operation = "list"
	OpCreate   Operation = "create"
	OpDonate   Operation = "donate"
	OpWithdraw Operation = "withdraw"
	OpDelete   Operation = "delete"
)

var remotePrefixes = map[Operation]string{
	OpList:     "Error fetching campaigns",
	OpCreate:   "Error creating campaign",
	OpDonate:   "Error donating",
	OpWithdraw: "Error withdrawing funds",
	OpDelete:   "Error deleting campaign",
}

// Reason 校验失败原因
type Reason string

const (
	ReasonNotFound         Reason = "campaign_not_found"
	ReasonNotOwner         Reason = "not_owner"
	ReasonAlreadyWithdrawn Reason = "already_withdrawn"
	ReasonHasDonations     Reason = "has_donations"
	ReasonGoalNotReached   Reason = "goal_not_reached"
	ReasonMissingField     Reason = "missing_field"
	ReasonInvalidAmount    Reason = "invalid_amount"
	ReasonInvalidDeadline  Reason = "invalid_deadline"
)

// ValidationError 本地校验失败，未发起任何远程调用
type ValidationError struct {
	Reason  Reason
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(reason Reason, message string) *ValidationError {
	return &ValidationError{Reason: reason, Message: message}
}

// RemoteError 网关调用、交易确认或同步失败
type RemoteError struct {
	Op  Operation
	Err error
}

func (e *RemoteError) Error() string {
	prefix, ok := remotePrefixes[e.Op]
	if !ok {
		prefix = fmt.Sprintf("Error in %s", e.Op)
	}
	return fmt.Sprintf("%s: %v", prefix, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// ConnectionError 钱包未连接或网关无法初始化
type ConnectionError struct {
	Message string
	Err     error
}

func (e *ConnectionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

var errNotConnected = &ConnectionError{Message: "Wallet not connected"}
