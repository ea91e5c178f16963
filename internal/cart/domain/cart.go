// Package domain 购物车领域模型：行、状态迁移、动作归约与事件
package domain

import (
	"encoding/json"
	"maps"
	"math"
	"slices"

	"github.com/shopspring/decimal"
)

// Cart 购物车状态，行按插入顺序排列，每个 id 至多一行
// 所有迁移返回新值，不修改接收者底层数组
type Cart struct {
	Lines []Line
}

// NewCart 以给定行创建购物车
func NewCart(lines []Line) Cart {
	return Cart{Lines: lines}
}

func (c Cart) index(id string) int {
	return slices.IndexFunc(c.Lines, func(l Line) bool { return l.ID == id })
}

func (c Cart) withLine(i int, l Line) Cart {
	lines := slices.Clone(c.Lines)
	lines[i] = l
	return Cart{Lines: lines}
}

// Add 已存在则数量加一并保留原字段，否则追加数量为 1 的新行
func (c Cart) Add(item Item) Cart {
	if i := c.index(item.ID); i >= 0 {
		return c.bump(i)
	}
	lines := make([]Line, len(c.Lines), len(c.Lines)+1)
	copy(lines, c.Lines)
	lines = append(lines, Line{ID: item.ID, Quantity: 1, Fields: maps.Clone(item.Fields)})
	return Cart{Lines: lines}
}

// Increase 数量加一，id 不存在时不变
func (c Cart) Increase(id string) Cart {
	i := c.index(id)
	if i < 0 {
		return c
	}
	return c.bump(i)
}

// bump 数量加一，已到 math.MaxInt 时不变
func (c Cart) bump(i int) Cart {
	if c.Lines[i].Quantity == math.MaxInt {
		return c
	}
	l := c.Lines[i].clone()
	l.Quantity++
	return c.withLine(i, l)
}

// Decrease 数量大于 1 时减一，不会自动移除行
func (c Cart) Decrease(id string) Cart {
	i := c.index(id)
	if i < 0 || c.Lines[i].Quantity <= 1 {
		return c
	}
	l := c.Lines[i].clone()
	l.Quantity--
	return c.withLine(i, l)
}

// Remove 移除对应行，不存在时不变
func (c Cart) Remove(id string) Cart {
	i := c.index(id)
	if i < 0 {
		return c
	}
	return Cart{Lines: slices.Delete(slices.Clone(c.Lines), i, i+1)}
}

// Clear 清空
func (c Cart) Clear() Cart {
	return Cart{}
}

// Find 查找行
func (c Cart) Find(id string) (Line, bool) {
	i := c.index(id)
	if i < 0 {
		return Line{}, false
	}
	return c.Lines[i], true
}

// Len 行数
func (c Cart) Len() int {
	return len(c.Lines)
}

// Count 商品总件数
func (c Cart) Count() int {
	n := 0
	for _, l := range c.Lines {
		if l.Quantity > math.MaxInt-n {
			return math.MaxInt
		}
		n += l.Quantity
	}
	return n
}

// Subtotal 按 price 字段计算小计，没有可用价格的行不计入
func (c Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		price, ok := PriceOf(l)
		if !ok {
			continue
		}
		total = total.Add(price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

// PriceOf 解析行的 price 字段
func PriceOf(l Line) (decimal.Decimal, bool) {
	v, ok := l.Fields["price"]
	if !ok {
		return decimal.Zero, false
	}
	switch p := v.(type) {
	case json.Number:
		d, err := decimal.NewFromString(p.String())
		return d, err == nil
	case string:
		d, err := decimal.NewFromString(p)
		return d, err == nil
	case float64:
		return decimal.NewFromFloat(p), true
	case int:
		return decimal.NewFromInt(int64(p)), true
	case int64:
		return decimal.NewFromInt(p), true
	case decimal.Decimal:
		return p, true
	default:
		return decimal.Zero, false
	}
}

// Equal 比较两个购物车的 id 与数量序列
func (c Cart) Equal(o Cart) bool {
	return slices.EqualFunc(c.Lines, o.Lines, func(a, b Line) bool {
		return a.ID == b.ID && a.Quantity == b.Quantity
	})
}

// EncodeSnapshot 序列化为快照格式
func EncodeSnapshot(lines []Line) (string, error) {
	if lines == nil {
		lines = []Line{}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeSnapshot 解析快照，任意一行不满足不变量则整体无效
func DecodeSnapshot(raw string) ([]Line, error) {
	var lines []Line
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(lines))
	for _, l := range lines {
		if err := l.Validate(); err != nil {
			return nil, err
		}
		if _, dup := seen[l.ID]; dup {
			return nil, ErrDuplicateLine
		}
		seen[l.ID] = struct{}{}
	}
	return lines, nil
}
