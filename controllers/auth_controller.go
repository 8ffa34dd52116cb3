package controllers

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-sql-driver/mysql"
	"golang.org/x/crypto/bcrypt"

	"go-plantcare/middleware"
	"go-plantcare/models"
	"go-plantcare/utils"
)

// AuthController 处理用户认证相关的请求
type AuthController struct {
	DB        *sql.DB
	JWTSecret string
	TokenTTL  time.Duration
}

// NewAuthController 创建一个新的AuthController实例
func NewAuthController(db *sql.DB, jwtSecret string, tokenTTL time.Duration) *AuthController {
	return &AuthController{DB: db, JWTSecret: jwtSecret, TokenTTL: tokenTTL}
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Username  string `json:"username" binding:"required"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// LoginRequest 登录请求，支持邮箱或用户名
type LoginRequest struct {
	EmailOrUsername string `json:"emailOrUsername" binding:"required"`
	Password        string `json:"password" binding:"required"`
}

// Register 用户注册
func (c *AuthController) Register(ctx *gin.Context) {
	var req RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(ctx, err.Error())
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	// 检查邮箱是否已存在
	var count int
	if err := c.DB.QueryRow("SELECT COUNT(*) FROM users WHERE email = ?", email).Scan(&count); err != nil {
		utils.InternalServerError(ctx, "Database error: "+err.Error())
		return
	}
	if count > 0 {
		utils.Conflict(ctx, "Email already exists")
		return
	}

	// 检查用户名是否已存在
	if err := c.DB.QueryRow("SELECT COUNT(*) FROM users WHERE username = ?", req.Username).Scan(&count); err != nil {
		utils.InternalServerError(ctx, "Database error: "+err.Error())
		return
	}
	if count > 0 {
		utils.Conflict(ctx, "Username already exists")
		return
	}

	// 加密密码
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.InternalServerError(ctx, "Could not hash password")
		return
	}

	nowStr := models.FormatTime(time.Now())
	result, err := c.DB.Exec(
		"INSERT INTO users (email, username, password, first_name, last_name, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, ?, 1, ?, ?)",
		email, req.Username, string(hashedPassword),
		nullIfEmpty(req.FirstName), nullIfEmpty(req.LastName),
		nowStr, nowStr,
	)
	if err != nil {
		// 并发注册可能绕过上面的预检查，靠唯一键约束兜底
		if isDuplicateKey(err) {
			utils.Conflict(ctx, "Email or username already exists")
			return
		}
		utils.InternalServerError(ctx, "Could not create user: "+err.Error())
		return
	}

	userID, err := result.LastInsertId()
	if err != nil {
		utils.InternalServerError(ctx, "Could not read new user id")
		return
	}

	// 生成JWT令牌
	token, err := middleware.GenerateToken(c.JWTSecret, int(userID), c.TokenTTL)
	if err != nil {
		utils.InternalServerError(ctx, "Could not generate token")
		return
	}

	utils.Created(ctx, "User registered successfully", gin.H{
		"user": gin.H{
			"id":       userID,
			"email":    email,
			"username": req.Username,
			"isActive": true,
		},
		"token": token,
	})
}

// Login 用户登录
func (c *AuthController) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(ctx, err.Error())
		return
	}

	// 按邮箱或用户名查询用户
	var user models.User
	err := c.DB.QueryRow(
		"SELECT id, email, username, password, is_active FROM users WHERE email = ? OR username = ?",
		strings.ToLower(strings.TrimSpace(req.EmailOrUsername)), req.EmailOrUsername,
	).Scan(&user.ID, &user.Email, &user.Username, &user.Password, &user.IsActive)

	if err != nil {
		if err == sql.ErrNoRows {
			utils.Unauthorized(ctx, "Invalid credentials")
		} else {
			utils.InternalServerError(ctx, "Database error: "+err.Error())
		}
		return
	}

	if !user.IsActive {
		utils.Unauthorized(ctx, "Invalid credentials")
		return
	}

	// 验证密码
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		utils.Unauthorized(ctx, "Invalid credentials")
		return
	}

	// 更新最后登录时间
	if _, err := c.DB.Exec("UPDATE users SET last_login_at = ? WHERE id = ?",
		models.FormatTime(time.Now()), user.ID); err != nil {
		utils.InternalServerError(ctx, "Database error: "+err.Error())
		return
	}

	// 生成JWT令牌
	token, err := middleware.GenerateToken(c.JWTSecret, user.ID, c.TokenTTL)
	if err != nil {
		utils.InternalServerError(ctx, "Could not generate token")
		return
	}

	utils.Success(ctx, "Login successful", gin.H{
		"user": gin.H{
			"id":       user.ID,
			"email":    user.Email,
			"username": user.Username,
			"isActive": user.IsActive,
		},
		"token": token,
	})
}

// Refresh 为已认证用户重新签发令牌
func (c *AuthController) Refresh(ctx *gin.Context) {
	userID := ctx.GetInt("userID")

	var isActive bool
	err := c.DB.QueryRow("SELECT is_active FROM users WHERE id = ?", userID).Scan(&isActive)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.Unauthorized(ctx, "User not found")
		} else {
			utils.InternalServerError(ctx, "Database error: "+err.Error())
		}
		return
	}
	if !isActive {
		utils.Unauthorized(ctx, "Account disabled")
		return
	}

	token, err := middleware.GenerateToken(c.JWTSecret, userID, c.TokenTTL)
	if err != nil {
		utils.InternalServerError(ctx, "Could not generate token")
		return
	}

	utils.Success(ctx, "Token refreshed", gin.H{"token": token})
}

// nullIfEmpty 空字符串入库为NULL
func nullIfEmpty(s string) interface{} {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

// isDuplicateKey 判断是否唯一键冲突（MySQL错误码1062，SQLite为UNIQUE约束）
func isDuplicateKey(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint")
}
