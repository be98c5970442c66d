package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/paiban/oncall/internal/config"
	"github.com/paiban/oncall/internal/repository"
)

// AppContext 各命令共享的依赖
type AppContext struct {
	Cfg     *config.Config
	Ctx     context.Context
	Version string
	Build   string

	stores *repository.Stores
}

// Stores 按需打开结果仓储
func (a *AppContext) Stores() (*repository.Stores, error) {
	if a.stores != nil {
		return a.stores, nil
	}
	s, err := repository.Open(a.Ctx, a.Cfg)
	if err != nil {
		return nil, err
	}
	a.stores = s
	return s, nil
}

// Close 关闭已打开的连接
func (a *AppContext) Close() {
	if a.stores != nil {
		a.stores.Close()
		a.stores = nil
	}
}

// LoadDotEnv 加载 .env 文件，文件不存在时忽略
func LoadDotEnv(files ...string) error {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("加载 .env 失败: %w", err)
	}
	return nil
}
