// Package docs 接口文档模板，注解变更后通过 main.go 中的 go:generate（swag init）重新生成
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {"get": {"tags": ["系统"], "summary": "健康检查", "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}}},
        "/missions": {"get": {"security": [{"BearerAuth": []}], "tags": ["任务"], "summary": "任务目录", "responses": {"200": {"description": "OK"}}}},
        "/missions/{id}/accept": {"post": {"security": [{"BearerAuth": []}], "tags": ["任务"], "summary": "接受任务", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"201": {"description": "Created"}, "404": {"description": "Not Found"}, "409": {"description": "ALREADY_ACCEPTED"}}}},
        "/user-missions": {"get": {"security": [{"BearerAuth": []}], "tags": ["任务"], "summary": "我的任务", "parameters": [{"type": "string", "name": "status", "in": "query"}], "responses": {"200": {"description": "OK"}}}},
        "/user-missions/{id}": {"get": {"security": [{"BearerAuth": []}], "tags": ["任务"], "summary": "任务详情", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/user-missions/{id}/progress": {"patch": {"security": [{"BearerAuth": []}], "tags": ["任务"], "summary": "手动更新任务进度", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "409": {"description": "ALREADY_COMPLETED / ALREADY_CANCELLED"}}}},
        "/user-missions/{id}/abandon": {"post": {"security": [{"BearerAuth": []}], "tags": ["任务"], "summary": "放弃任务", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "409": {"description": "ALREADY_COMPLETED / ALREADY_CANCELLED"}}}},
        "/tracking/fitness": {"post": {"security": [{"BearerAuth": []}], "tags": ["打卡"], "summary": "运动打卡", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}},
        "/tracking/water": {"post": {"security": [{"BearerAuth": []}], "tags": ["打卡"], "summary": "饮水打卡", "responses": {"201": {"description": "Created"}}}},
        "/tracking/sleep": {"post": {"security": [{"BearerAuth": []}], "tags": ["打卡"], "summary": "睡眠打卡", "responses": {"201": {"description": "Created"}}}},
        "/tracking/meal": {"post": {"security": [{"BearerAuth": []}], "tags": ["打卡"], "summary": "饮食打卡", "responses": {"201": {"description": "Created"}}}},
        "/tracking/mood": {"post": {"security": [{"BearerAuth": []}], "tags": ["打卡"], "summary": "心情打卡", "responses": {"201": {"description": "Created"}}}},
        "/tracking/entries": {"get": {"security": [{"BearerAuth": []}], "tags": ["打卡"], "summary": "当天打卡记录", "parameters": [{"type": "string", "name": "date", "in": "query"}], "responses": {"200": {"description": "OK"}}}},
        "/tracking/summary": {"get": {"security": [{"BearerAuth": []}], "tags": ["打卡"], "summary": "当天各指标汇总", "parameters": [{"type": "string", "name": "date", "in": "query"}], "responses": {"200": {"description": "OK"}}}},
        "/activities": {"get": {"security": [{"BearerAuth": []}], "tags": ["健康活动"], "summary": "活动列表及当天完成状态", "parameters": [{"type": "string", "name": "date", "in": "query"}], "responses": {"200": {"description": "OK"}}}},
        "/activities/{id}/complete": {"post": {"security": [{"BearerAuth": []}], "tags": ["健康活动"], "summary": "完成活动", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"201": {"description": "Created"}, "409": {"description": "DUPLICATE_ACTIVITY_COMPLETION"}}}},
        "/activities/history": {"get": {"security": [{"BearerAuth": []}], "tags": ["健康活动"], "summary": "活动完成历史", "parameters": [{"type": "integer", "name": "period_days", "in": "query"}, {"type": "string", "name": "end_date", "in": "query"}], "responses": {"200": {"description": "OK"}}}},
        "/stats": {"get": {"security": [{"BearerAuth": []}], "tags": ["统计"], "summary": "周期统计与健康评分", "parameters": [{"type": "integer", "name": "period_days", "in": "query"}, {"type": "string", "name": "end_date", "in": "query"}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}},
        "/points": {"get": {"security": [{"BearerAuth": []}], "tags": ["统计"], "summary": "积分余额", "responses": {"200": {"description": "OK"}}}}
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Wellness Engine API",
	Description:      "每日打卡累加、任务进度与健康活动服务",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
