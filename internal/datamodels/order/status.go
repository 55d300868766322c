package order

import "sort"

// Status 订单状态
type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusShipped   Status = "shipped"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// AllStatuses 全部合法状态，按流程顺序
var AllStatuses = []Status{StatusPending, StatusPaid, StatusShipped, StatusCompleted, StatusCancelled}

func (s Status) Valid() bool {
	for _, v := range AllStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// TransitionTable 当前状态 -> 允许的下一个状态
type TransitionTable map[Status][]Status

// Allows from -> to 是否合法；同状态写入视为合法
func (t TransitionTable) Allows(from, to Status) bool {
	if from == to {
		return true
	}
	for _, next := range t[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Next 返回 from 可以进入的状态（已排序，便于展示）
func (t TransitionTable) Next(from Status) []Status {
	out := append([]Status(nil), t[from]...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// PermissiveTransitions 任意状态可以流转到任意状态，包括重新打开已取消订单
func PermissiveTransitions() TransitionTable {
	t := make(TransitionTable, len(AllStatuses))
	for _, from := range AllStatuses {
		for _, to := range AllStatuses {
			if from != to {
				t[from] = append(t[from], to)
			}
		}
	}
	return t
}

// StrictTransitions 只允许正向流转，completed 与 cancelled 为终态
func StrictTransitions() TransitionTable {
	return TransitionTable{
		StatusPending: {StatusPaid, StatusCancelled},
		StatusPaid:    {StatusShipped, StatusCancelled},
		StatusShipped: {StatusCompleted},
	}
}
