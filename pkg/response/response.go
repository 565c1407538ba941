package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "sudooom.mahjong/internal/errors"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// 错误码常量
const (
	CodeSuccess = apperrors.CodeSuccess

	CodeInvalidParams   = apperrors.CodeInvalidParams
	CodeSessionNotFound = apperrors.CodeSessionNotFound

	CodeInvalidTransition = apperrors.CodeInvalidTransition
	CodeNotAWinningHand   = apperrors.CodeNotAWinningHand
	CodeWallExhausted     = apperrors.CodeWallExhausted
	CodeIllegalClaim      = apperrors.CodeIllegalClaim

	CodeServerError = apperrors.CodeServerError
	CodeDBError     = apperrors.CodeDBError
)

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

// ErrorWithMsg 自定义错误消息
func ErrorWithMsg(c *gin.Context, code int, message string) {
	c.JSON(http.StatusOK, Response{
		Code:    code,
		Message: message,
		Data:    nil,
	})
}

// ErrorFromAppError 从 AppError 生成错误响应
// 规则类错误附带细节，方便前端提示具体原因
func ErrorFromAppError(c *gin.Context, err error) {
	code := apperrors.GetCode(err)
	message := apperrors.GetMessage(err)
	if code != CodeServerError && code != CodeDBError {
		message = err.Error()
	}
	c.JSON(http.StatusOK, Response{
		Code:    code,
		Message: message,
		Data:    nil,
	})
}
