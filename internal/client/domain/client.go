package domain

import (
	"context"
	"errors"
	"time"
)

// ClientStatus 客户状态
type ClientStatus string

const (
	StatusActive   ClientStatus = "active"
	StatusInactive ClientStatus = "inactive"
)

// ErrNotFound 客户不存在
var ErrNotFound = errors.New("client not found")

// Client 投资客户
type Client struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"column:name;type:varchar(100);not null" json:"name"`
	Email     string       `gorm:"column:email;type:varchar(255);uniqueIndex;not null" json:"email"`
	Status    ClientStatus `gorm:"column:status;type:varchar(16);not null;default:active" json:"status"`
	CreatedAt time.Time    `gorm:"column:created_at" json:"created_at"`
}

func (Client) TableName() string { return "clients" }

// Deactivate 软删除：仅置状态，历史报表仍可引用该客户
func (c *Client) Deactivate() {
	c.Status = StatusInactive
}

// ListFilter 列表过滤条件
type ListFilter struct {
	// name/email 模糊匹配
	Search string
	// 为空表示不过滤
	Status ClientStatus
	Offset int
	Limit  int
}

// Repository 客户仓储
type Repository interface {
	Save(ctx context.Context, client *Client) error
	GetByID(ctx context.Context, id uint) (*Client, error)
	List(ctx context.Context, filter ListFilter) ([]*Client, error)
}
