package nats

// NATS Subject 常量定义
const (
	// SubjectSessionPrefix 牌局事件前缀
	// 完整格式: mahjong.session.{session_id}.events
	SubjectSessionPrefix       = "mahjong.session."
	SubjectSessionEventsSuffix = ".events"

	// SubjectSessionCommand 外部进程驱动牌局的请求/响应 Subject
	SubjectSessionCommand = "mahjong.session.command"

	// QueueGroupEngine 引擎服务队列组名称
	QueueGroupEngine = "mahjong-engine"
)

// BuildSessionEventsSubject 构建牌局事件 Subject
func BuildSessionEventsSubject(sessionID string) string {
	return SubjectSessionPrefix + sessionID + SubjectSessionEventsSuffix
}
