package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"

	"github.com/MohdFaizan63/Resume-Builder/internal/auth"
	"github.com/MohdFaizan63/Resume-Builder/internal/config"
	"github.com/MohdFaizan63/Resume-Builder/internal/database"
	"github.com/MohdFaizan63/Resume-Builder/internal/service"
	"github.com/MohdFaizan63/Resume-Builder/internal/tasks"
)

func main() {
	var (
		email     = flag.String("email", "", "创建管理员账号的邮箱")
		name      = flag.String("name", "Administrator", "管理员显示名")
		reconcile = flag.Bool("reconcile", false, "立即重算所有用户的简历计数")
		enqueue   = flag.Uint("enqueue-reconcile", 0, "为指定用户投递计数校正任务（交给 worker 执行）")
		dbHost    = flag.String("db-host", "", "数据库 Host（可选，覆盖 DATABASE_HOST）")
		dbName    = flag.String("db-name", "", "数据库名（可选，覆盖 POSTGRES_DB）")
	)
	flag.Parse()

	cfg := config.MustLoad()
	if h := strings.TrimSpace(*dbHost); h != "" {
		cfg.Database.Host = h
	}
	if n := strings.TrimSpace(*dbName); n != "" {
		cfg.Database.Name = n
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	switch {
	case *enqueue > 0:
		enqueueReconcile(cfg.Redis, uint(*enqueue))
	case *reconcile:
		db := openDatabase(cfg.Database)
		corrected, err := service.NewAccountService(db).ReconcileAll(ctx)
		if err != nil {
			log.Fatalf("reconcile resume counts: %v", err)
		}
		fmt.Printf("已校正 %d 个用户的简历计数\n", corrected)
	case strings.TrimSpace(*email) != "":
		createAdmin(ctx, openDatabase(cfg.Database), *email, *name)
	default:
		flag.Usage()
		log.Fatal("one of --email, --reconcile or --enqueue-reconcile is required")
	}
}

func openDatabase(cfg config.DatabaseConfig) *gorm.DB {
	db, err := database.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}
	return db
}

func createAdmin(ctx context.Context, db *gorm.DB, rawEmail, name string) {
	email := strings.ToLower(strings.TrimSpace(rawEmail))

	var existing database.User
	switch err := db.WithContext(ctx).Where("email = ?", email).First(&existing).Error; {
	case err == nil:
		log.Fatalf("user %q already exists", email)
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		log.Fatalf("query user: %v", err)
	}

	password, err := generateRandomPassword(24)
	if err != nil {
		log.Fatalf("generate password: %v", err)
	}
	hashed, err := auth.HashPassword(password)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	now := time.Now()
	user := database.User{
		Name:          strings.TrimSpace(name),
		Email:         email,
		PasswordHash:  hashed,
		Role:          database.RoleAdmin,
		EmailVerified: true,
		Subscription: database.Subscription{
			Plan:      database.PlanEnterprise,
			IsActive:  true,
			StartDate: &now,
		},
	}
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		log.Fatalf("create user: %v", err)
	}

	fmt.Printf("已创建管理员账号：\n")
	fmt.Printf("邮箱: %s\n", email)
	fmt.Printf("初始密码: %s\n", password)
	fmt.Printf("提示：该密码仅显示一次，请妥善保存。\n")
}

func enqueueReconcile(cfg config.RedisConfig, userID uint) {
	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	defer client.Close()

	task, err := tasks.NewReconcileTask(userID, uuid.NewString())
	if err != nil {
		log.Fatalf("build reconcile task: %v", err)
	}
	info, err := client.Enqueue(task)
	if err != nil {
		log.Fatalf("enqueue reconcile task: %v", err)
	}
	fmt.Printf("已投递任务 %s（用户 %d）\n", info.ID, userID)
}

func generateRandomPassword(bytesLen int) (string, error) {
	if bytesLen <= 0 {
		bytesLen = 24
	}
	buf := make([]byte, bytesLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
