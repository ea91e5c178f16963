package domain

import (
	"encoding/json"
	"fmt"
)

// ActionType 归约动作类型
type ActionType string

const (
	ActionAddToCart  ActionType = "ADD_TO_CART"
	ActionIncrease   ActionType = "INCREASE"
	ActionDecrease   ActionType = "DECREASE"
	ActionRemoveItem ActionType = "REMOVE_ITEM"
	ActionClear      ActionType = "CLEAR"
)

// Action 一次状态迁移请求；ADD_TO_CART 使用 Item，其余按 ID 定位
type Action struct {
	Type ActionType
	Item Item
	ID   string
}

// Known 是否是已知动作
func (t ActionType) Known() bool {
	switch t {
	case ActionAddToCart, ActionIncrease, ActionDecrease, ActionRemoveItem, ActionClear:
		return true
	}
	return false
}

// Reduce 应用动作，未知类型返回原状态
func Reduce(c Cart, a Action) Cart {
	switch a.Type {
	case ActionAddToCart:
		return c.Add(a.Item)
	case ActionIncrease:
		return c.Increase(a.ID)
	case ActionDecrease:
		return c.Decrease(a.ID)
	case ActionRemoveItem:
		return c.Remove(a.ID)
	case ActionClear:
		return c.Clear()
	default:
		return c
	}
}

type actionJSON struct {
	Type    ActionType      `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// UnmarshalJSON 解析 {"type": ..., "payload": {...}}；除 CLEAR 外 payload 必须带 id
func (a *Action) UnmarshalJSON(data []byte) error {
	var raw actionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if !raw.Type.Known() {
		return fmt.Errorf("unknown action type %q", raw.Type)
	}

	*a = Action{Type: raw.Type}
	if raw.Type == ActionClear {
		return nil
	}
	if len(raw.Payload) == 0 {
		return fmt.Errorf("action %s requires a payload", raw.Type)
	}

	var item Item
	if err := json.Unmarshal(raw.Payload, &item); err != nil {
		return err
	}
	if raw.Type == ActionAddToCart {
		a.Item = item
	} else {
		a.ID = item.ID
	}
	return nil
}
