package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"strconv"
)

// ErrInvalidLine 行缺少 id 或数量小于 1
var ErrInvalidLine = errors.New("invalid cart line")

// Line 购物车中的一行：商品 id、数量以及首次加入时捕获的商品字段
// JSON 形式是扁平对象，id 与 quantity 覆盖同名字段
type Line struct {
	ID       string
	Quantity int
	Fields   map[string]any
}

// Field 读取商品字段
func (l Line) Field(name string) (any, bool) {
	v, ok := l.Fields[name]
	return v, ok
}

func (l Line) clone() Line {
	l.Fields = maps.Clone(l.Fields)
	return l
}

// MarshalJSON 输出 {...fields, "id": ..., "quantity": ...}
func (l Line) MarshalJSON() ([]byte, error) {
	obj := make(map[string]any, len(l.Fields)+2)
	maps.Copy(obj, l.Fields)
	obj["id"] = l.ID
	obj["quantity"] = l.Quantity
	return json.Marshal(obj)
}

// UnmarshalJSON 解析扁平对象；id 可以是字符串或数字
func (l *Line) UnmarshalJSON(data []byte) error {
	fields, err := decodeObject(data)
	if err != nil {
		return err
	}

	id, err := idFrom(fields["id"])
	if err != nil {
		return err
	}
	qty, err := quantityFrom(fields["quantity"])
	if err != nil {
		return err
	}
	delete(fields, "id")
	delete(fields, "quantity")

	l.ID = id
	l.Quantity = qty
	l.Fields = fields
	return nil
}

// Validate 检查行的不变量
func (l Line) Validate() error {
	if l.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidLine)
	}
	if l.Quantity < 1 {
		return fmt.Errorf("%w: id %s quantity %d", ErrInvalidLine, l.ID, l.Quantity)
	}
	return nil
}

// Item ADD_TO_CART 的载荷：商品 id 加任意商品字段
type Item struct {
	ID     string
	Fields map[string]any
}

// NewItem 构造载荷
func NewItem(id string, fields map[string]any) Item {
	return Item{ID: id, Fields: fields}
}

// MarshalJSON 输出 {...fields, "id": ...}
func (i Item) MarshalJSON() ([]byte, error) {
	obj := make(map[string]any, len(i.Fields)+1)
	maps.Copy(obj, i.Fields)
	obj["id"] = i.ID
	return json.Marshal(obj)
}

// UnmarshalJSON 解析商品对象，忽略其中的 quantity
func (i *Item) UnmarshalJSON(data []byte) error {
	fields, err := decodeObject(data)
	if err != nil {
		return err
	}
	id, err := idFrom(fields["id"])
	if err != nil {
		return err
	}
	delete(fields, "id")
	delete(fields, "quantity")

	i.ID = id
	i.Fields = fields
	return nil
}

func decodeObject(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, fmt.Errorf("%w: not an object", ErrInvalidLine)
	}
	return fields, nil
}

func idFrom(v any) (string, error) {
	switch id := v.(type) {
	case string:
		if id == "" {
			return "", fmt.Errorf("%w: empty id", ErrInvalidLine)
		}
		return id, nil
	case json.Number:
		return id.String(), nil
	case nil:
		return "", fmt.Errorf("%w: missing id", ErrInvalidLine)
	default:
		return "", fmt.Errorf("%w: id of type %T", ErrInvalidLine, v)
	}
}

func quantityFrom(v any) (int, error) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, fmt.Errorf("%w: quantity must be a number", ErrInvalidLine)
	}
	qty, err := strconv.Atoi(n.String())
	if err != nil {
		return 0, fmt.Errorf("%w: quantity %s", ErrInvalidLine, n)
	}
	return qty, nil
}
