// @title 职途伴侣 后端 API
// @version 1.0
// @description 职业发展助手：学习路线、资源推荐、面试题库与模拟面试。

// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"fmt"
	"os"
	"zhitu_backend/internal/app"
	"zhitu_backend/internal/config"
	"zhitu_backend/internal/repository"
	"zhitu_backend/internal/service"
	"zhitu_backend/pkg/database"
	"zhitu_backend/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configDir string

	root := &cobra.Command{
		Use:          "zhitu",
		Short:        "职途伴侣后端服务",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configDir, "config", "c", "configs", "配置文件所在目录")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "启动 HTTP 服务",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configDir)
			if err != nil {
				return err
			}
			defer logger.Log.Sync()

			application, err := app.NewApp(cfg, configDir)
			if err != nil {
				logger.Log.Error("Failed to initialize application", zap.Error(err))
				return err
			}
			return application.Run()
		},
	}

	root.AddCommand(serve, migrateCmd(&configDir), createAdminCmd(&configDir))
	// 不带子命令时默认启动服务
	root.RunE = serve.RunE
	return root
}

func migrateCmd(configDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "执行数据库迁移后退出",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configDir)
			if err != nil {
				return err
			}
			defer logger.Log.Sync()

			db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
			if err != nil {
				return err
			}
			return database.Migrate(db)
		},
	}
}

func createAdminCmd(configDir *string) *cobra.Command {
	var in service.RegisterInput

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "创建管理员账号",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(in.Password) < 6 {
				return fmt.Errorf("password must be at least 6 characters")
			}
			cfg, err := loadConfig(*configDir)
			if err != nil {
				return err
			}
			defer logger.Log.Sync()

			db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return err
			}

			auth := service.NewAuthService(repository.NewUserRepository(db), cfg)
			user, err := auth.CreateAdmin(in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "管理员已创建: id=%d email=%s\n", user.ID, user.Email)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&in.Name, "name", "admin", "管理员名称")
	f.StringVar(&in.Email, "email", "", "登录邮箱")
	f.StringVar(&in.Password, "password", "", "登录密码")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func loadConfig(dir string) (*config.Config, error) {
	cfg, err := config.LoadConfig(dir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger.InitLogger(cfg)
	return cfg, nil
}
