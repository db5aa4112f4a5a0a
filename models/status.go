package models

// Status labels are stored as the Japanese strings the frontend displays.
// Each set is closed: parse at the boundary, never pass raw strings through.

type OrderStatus string

const (
	OrderStatusRequested OrderStatus = "依頼中"
	OrderStatusPrepared  OrderStatus = "発注準備"
	OrderStatusRejected  OrderStatus = "却下"
	OrderStatusOrdered   OrderStatus = "発注済"
	OrderStatusReceived  OrderStatus = "入庫済み"
	OrderStatusDone      OrderStatus = "完了"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusRequested, OrderStatusPrepared, OrderStatusRejected,
		OrderStatusOrdered, OrderStatusReceived, OrderStatusDone:
		return true
	}
	return false
}

type OrderType string

const (
	OrderTypeManual OrderType = "手動"
	OrderTypeAuto   OrderType = "自動"
	OrderTypeDirect OrderType = "直接追加"
)

func (t OrderType) Valid() bool {
	switch t {
	case OrderTypeManual, OrderTypeAuto, OrderTypeDirect:
		return true
	}
	return false
}

type DispatchStatus string

const (
	DispatchStatusUnsent   DispatchStatus = "未送信"
	DispatchStatusSent     DispatchStatus = "送信済"
	DispatchStatusReceived DispatchStatus = "入庫済み"
)

func (s DispatchStatus) Valid() bool {
	switch s {
	case DispatchStatusUnsent, DispatchStatusSent, DispatchStatusReceived:
		return true
	}
	return false
}

// ConsumableOrderStatus is the order flag carried on the consumable row itself.
type ConsumableOrderStatus string

const (
	ConsumableNotOrdered ConsumableOrderStatus = "未発注"
	ConsumableRequested  ConsumableOrderStatus = "依頼中"
	ConsumablePrepared   ConsumableOrderStatus = "発注準備"
	ConsumableOrdered    ConsumableOrderStatus = "発注済"
	ConsumableReceived   ConsumableOrderStatus = "入庫済み"
)

type ShortageStatus string

const (
	ShortageOut ShortageStatus = "欠品"
	ShortageLow ShortageStatus = "要注意"
	ShortageOK  ShortageStatus = "在庫あり"
)

// InboundType distinguishes manual receipts from dispatch-order receipts in the
// inbound history.
const (
	InboundTypeManual   = "手動"
	InboundTypeDispatch = "注文書"
)
