package global

import (
	"promo_notify/config"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/mongo"
)

// Các biến toàn cục của ứng dụng, được gán trong quá trình init (cmd/server).
// Sau khi init xong chỉ đọc, không ghi - mỗi request tự resolve config tenant
// riêng nên không có shared mutable state giữa các request.
var (
	// Config là cấu hình server đọc từ environment
	Config *config.Configuration

	// MongoClient là client MongoDB dùng chung
	MongoClient *mongo.Client

	// Validate là validator instance dùng chung
	Validate *validator.Validate
)
