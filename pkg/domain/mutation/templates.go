package mutation

import (
	"strings"

	"github.com/felixgeelhaar/specgate/pkg/domain/document"
)

// ExampleKind names a family of illustrative snippets.
type ExampleKind string

const (
	ExampleCriterion ExampleKind = "criterion"
	ExampleStory     ExampleKind = "story"
	ExampleEdgeCase  ExampleKind = "edge-case"
	ExampleInterface ExampleKind = "interface"
	ExampleDiagram   ExampleKind = "diagram"
	ExampleTrace     ExampleKind = "trace"     // format: id, component
	ExampleProperty  ExampleKind = "property"  // format: number, component, id
	ExampleComponent ExampleKind = "component" // default design element name
)

// TemplateSet holds every locale-specific snippet the mutator renders.
type TemplateSet struct {
	Sections map[document.Language]map[document.Marker]string
	Examples map[document.Language]map[ExampleKind][]string
	// Terms maps a vocabulary term to the block that introduces it.
	Terms map[document.Language]map[document.Vocabulary]map[string]string
}

func (t *TemplateSet) Section(lang document.Language, m document.Marker) (string, bool) {
	s, ok := t.Sections[lang][m]
	return s, ok
}

func (t *TemplateSet) Example(lang document.Language, k ExampleKind) ([]string, bool) {
	s, ok := t.Examples[lang][k]
	return s, ok && len(s) > 0
}

func (t *TemplateSet) Term(lang document.Language, v document.Vocabulary, term string) (string, bool) {
	s, ok := t.Terms[lang][v][term]
	return s, ok
}

func lines(s ...string) string {
	return strings.Join(s, "\n")
}

// DefaultTemplates returns the built-in en and zh templates.
func DefaultTemplates() *TemplateSet {
	return &TemplateSet{
		Sections: map[document.Language]map[document.Marker]string{
			document.LanguageEN: {
				document.MarkerIntroduction: lines(
					"## Introduction", "",
					"This document describes the requirements for the system, including its background, goals and scope.", "",
					"### Project Background", "",
					"[Describe the business context and the problem being solved]", "",
					"### Project Goals", "",
					"- [Primary goal]",
					"- [Secondary goal]",
				),
				document.MarkerGlossary: lines(
					"## Glossary", "",
					"- **System**: the software described by this document",
					"- **User**: a person or service interacting with the System",
					"- **EARS**: Easy Approach to Requirements Syntax, the structured form used for requirement statements",
				),
				document.MarkerStories: lines("## User Stories"),
				document.MarkerRequirements: lines(
					"## Requirements", "",
					"### Requirement 1: [Feature name]", "",
					"#### Acceptance Criteria", "",
					"1. WHEN [trigger] THEN the system SHALL [response]",
				),
				document.MarkerNonFunctional: lines(
					"## Non-functional Requirements", "",
					"Quality attributes the system must satisfy.",
				),
				document.MarkerConstraints: lines(
					"## Constraints", "",
					"- Technical constraint: [language, platform or infrastructure limits]",
					"- Business constraint: [budget, schedule or regulatory limits]",
				),
				document.MarkerOverview: lines(
					"## Overview", "",
					"This design describes how the system satisfies its requirements. It covers the architecture, the main components, their interfaces and the key technical decisions.",
				),
				document.MarkerArchitecture: lines(
					"## Architecture", "",
					"The system uses a layered architecture that separates presentation, business logic and data access.",
				),
				document.MarkerComponents: lines(
					"## Components", "",
					"### Core Component", "",
					"- Responsibility: [what the component does]",
					"- Interface: [public operations]",
				),
				document.MarkerInterfaces: lines(
					"## Interfaces", "",
					"- API Design: [operations exposed to clients]",
					"- Data Model: [main entities and their fields]",
				),
				document.MarkerTraceability: lines(
					"## Requirements Traceability", "",
					"Each design element below references the requirement it satisfies.",
				),
				document.MarkerProperties: lines(
					"## Correctness Properties", "",
					"Properties that must hold for every valid execution.",
				),
				document.MarkerTechnology: lines(
					"## Technology Stack", "",
					"The technology choices below were selected for maturity, team familiarity and long-term support.",
				),
				document.MarkerNFRDesign:     lines("## Non-functional Design"),
				document.MarkerErrorHandling: lines("## Error Handling", "", "Failures are expected events with an explicit handling strategy."),
			},
			document.LanguageZH: {
				document.MarkerIntroduction: lines(
					"## 1. 概述", "",
					"本文档描述系统的需求，包括项目背景、目标与范围。", "",
					"### 项目背景", "",
					"[描述业务背景和要解决的问题]", "",
					"### 项目目标", "",
					"- [主要目标]",
					"- [次要目标]",
				),
				document.MarkerGlossary: lines(
					"## 术语表", "",
					"- **系统**: 本文档描述的软件",
					"- **用户**: 与系统交互的人员或服务",
				),
				document.MarkerStories: lines(
					"## 2. 用户故事", "",
					"- 作为用户，我希望[目标]，以便[收益]",
				),
				document.MarkerRequirements: lines(
					"## 3. 功能需求", "",
					"### 功能 1: [功能名称]", "",
					"**验收标准**:",
					"1. WHEN [触发条件] THEN 系统 SHALL [响应]",
				),
				document.MarkerNonFunctional: lines(
					"## 4. 非功能需求", "",
					"系统必须满足的质量属性。",
				),
				document.MarkerConstraints: lines(
					"## 5. 约束条件", "",
					"- 技术约束: [语言、平台或基础设施要求]",
					"- 业务约束: [预算、进度或合规要求]",
				),
				document.MarkerOverview: lines(
					"## 1. 系统概述", "",
					"本设计说明系统如何满足需求，涵盖架构、主要组件与关键技术决策。",
				),
				document.MarkerArchitecture: lines(
					"## 2. 架构设计", "",
					"系统采用分层架构，分离表示层、业务逻辑层与数据访问层。",
				),
				document.MarkerComponents: lines(
					"## 3. 组件设计", "",
					"### 核心组件", "",
					"- 职责: [组件负责的工作]",
					"- 接口定义: [对外提供的操作]",
				),
				document.MarkerInterfaces: lines(
					"## 4. 接口设计", "",
					"- API 设计: [对外暴露的操作]",
					"- 数据结构: [主要实体及字段]",
				),
				document.MarkerTraceability: lines(
					"## 需求追溯", "",
					"以下设计元素均标注其满足的需求。",
				),
				document.MarkerProperties: lines(
					"## 正确性属性", "",
					"所有合法执行都必须满足的属性。",
				),
				document.MarkerTechnology: lines(
					"## 技术选型", "",
					"以下技术选择基于成熟度、团队熟悉度与长期支持。",
				),
				document.MarkerNFRDesign:     lines("## 非功能设计"),
				document.MarkerErrorHandling: lines("## 容错机制", "", "依赖失败、超时与非法输入均有明确的处理策略。"),
			},
		},
		Examples: map[document.Language]map[ExampleKind][]string{
			document.LanguageEN: {
				ExampleCriterion: {
					"WHEN a user submits a valid request THEN the system SHALL process it and confirm the result",
					"WHEN a required field is missing THEN the system SHALL reject the request with a validation message",
					"WHEN an operation completes THEN the system SHALL record an audit entry",
					"WHEN a user lacks permission THEN the system SHALL deny access and log the attempt",
					"WHEN a dependency is unavailable THEN the system SHALL return a retryable error",
					"WHEN a user requests a list of items THEN the system SHALL return results in a stable order",
					"WHEN a session expires THEN the system SHALL require the user to sign in again",
					"WHEN an item is deleted THEN the system SHALL remove it from every listing",
					"WHEN input exceeds the configured limit THEN the system SHALL reject it with an explanatory message",
					"WHEN the configuration changes THEN the system SHALL apply it without a restart",
				},
				ExampleStory: {
					"**User Story:** As a new user, I want to register an account, so that I can access the service",
					"**User Story:** As an administrator, I want to manage user roles, so that access stays controlled",
					"**User Story:** As a returning user, I want to reset my password, so that I can recover access",
					"**User Story:** As an operator, I want to view system health, so that I can react to incidents",
					"**User Story:** As an auditor, I want to export activity logs, so that compliance can be demonstrated",
					"**User Story:** As a mobile user, I want pages to load quickly, so that I can work on slow networks",
					"**User Story:** As a team lead, I want to assign work to members, so that progress is visible",
					"**User Story:** As a support agent, I want to search customer history, so that I can resolve tickets faster",
				},
				ExampleEdgeCase: {
					lines("**Acceptance Criteria (edge case):**", "1. IF the input is empty THEN the system SHALL return a descriptive validation error"),
					lines("**Acceptance Criteria (edge case):**", "1. IF the same request is submitted twice THEN the system SHALL process it only once"),
					lines("**Acceptance Criteria (edge case):**", "1. IF a value exceeds its allowed range THEN the system SHALL reject it without partial changes"),
				},
				ExampleInterface: {
					"- Interface `Create(request) -> Item`: validates input and persists a new item",
					"- Data Model `Item`: id, name, status, created_at",
					"- Parameter `limit`: maximum number of results returned, default 50",
					"- Data Structure `Page`: items plus a continuation cursor",
					"- API Design: operations are idempotent and versioned",
				},
				ExampleDiagram: {
					lines("### Architecture Diagram", "", "```mermaid", "graph TB",
						"    A[User Interface] --> B[Business Logic Layer]",
						"    B --> C[Data Access Layer]",
						"    C --> D[Data Storage]", "```"),
					lines("### Component Diagram", "", "```mermaid", "graph LR",
						"    Client --> Gateway[Gateway]",
						"    Gateway --> Service[Core Service]",
						"    Service --> Store[(Store)]", "```"),
					lines("### Sequence Diagram", "", "```mermaid", "sequenceDiagram",
						"    participant U as User",
						"    participant S as System",
						"    U->>S: Request",
						"    S-->>U: Response", "```"),
				},
				ExampleTrace:     {"- Requirement %s is addressed by %s", "- Requirement %s is verified against %s"},
				ExampleProperty:  {"- **Property %d:** %s preserves its documented invariants. **Validates: Requirements %s**"},
				ExampleComponent: {"Core Component", "API Layer", "Data Store", "Validation Layer", "Configuration Manager", "Error Handler", "Event Publisher", "Access Control"},
			},
			document.LanguageZH: {
				ExampleCriterion: {
					"WHEN 用户提交有效请求 THEN 系统 SHALL 处理请求并返回结果",
					"WHEN 必填字段缺失 THEN 系统 SHALL 拒绝请求并提示校验信息",
					"WHEN 操作完成 THEN 系统 SHALL 记录审计日志",
					"WHEN 用户无访问权限 THEN 系统 SHALL 拒绝访问并记录尝试",
					"WHEN 依赖服务不可达 THEN 系统 SHALL 返回可重试的错误",
					"WHEN 用户请求列表 THEN 系统 SHALL 按稳定顺序返回结果",
					"WHEN 会话过期 THEN 系统 SHALL 要求用户重新登录",
					"WHEN 条目被删除 THEN 系统 SHALL 将其从所有列表中移除",
					"WHEN 输入超过配置上限 THEN 系统 SHALL 拒绝并说明原因",
					"WHEN 配置发生变化 THEN 系统 SHALL 无需重启即可生效",
				},
				ExampleStory: {
					"- 作为新用户，我希望注册账号，以便使用服务",
					"- 作为管理员，我希望管理用户角色，以便控制访问权限",
					"- 作为老用户，我希望重置密码，以便恢复访问",
					"- 作为运维人员，我希望查看系统健康状况，以便及时处理故障",
					"- 作为审计员，我希望导出操作记录，以便证明合规",
					"- 作为移动端用户，我希望页面快速加载，以便在弱网下使用",
					"- 作为团队负责人，我希望分配任务，以便掌握进度",
					"- 作为客服人员，我希望检索客户历史，以便更快解决工单",
				},
				ExampleEdgeCase: {
					lines("**验收标准**: 边界情况", "1. WHEN 输入为空 THEN 系统 SHALL 返回明确的校验错误"),
					lines("**验收标准**: 边界情况", "1. WHEN 同一请求重复提交 THEN 系统 SHALL 只处理一次"),
					lines("**验收标准**: 边界情况", "1. WHEN 数值超出允许范围 THEN 系统 SHALL 拒绝且不产生部分修改"),
				},
				ExampleInterface: {
					"- 接口定义 `创建(请求) -> 条目`: 校验输入并持久化新条目",
					"- 数据结构 `条目`: 编号、名称、状态、创建时间",
					"- 参数说明 `limit`: 返回结果的最大数量，默认 50",
					"- API 设计: 所有操作幂等且带版本号",
				},
				ExampleDiagram: {
					lines("### 架构图", "", "```mermaid", "graph TB",
						"    A[用户界面] --> B[业务逻辑层]",
						"    B --> C[数据访问层]",
						"    C --> D[数据存储]", "```"),
					lines("### 流程图", "", "```mermaid", "flowchart LR",
						"    开始 --> 处理 --> 结束", "```"),
					lines("### 设计图", "", "```mermaid", "classDiagram",
						"    class 核心组件", "```"),
				},
				ExampleTrace:     {"- 需求 %s 由 %s 实现", "- 需求 %s 已在 %s 中验证"},
				ExampleProperty:  {"- **属性 %d:** %s 保持其约定的不变量。**验证: 需求 %s**"},
				ExampleComponent: {"核心组件", "接口层", "数据存储", "校验层", "配置管理器", "错误处理器", "事件发布器", "访问控制"},
			},
		},
		Terms: map[document.Language]map[document.Vocabulary]map[string]string{
			document.LanguageEN: {
				document.VocabNFR: {
					"performance":     lines("### Performance", "", "- The system SHALL respond to interactive requests within 2 seconds under normal load"),
					"security":        lines("### Security", "", "- The system SHALL authenticate users before granting access to protected data"),
					"usability":       lines("### Usability", "", "- The system SHALL give clear feedback for every user action"),
					"maintainability": lines("### Maintainability", "", "- The codebase SHALL follow documented coding standards and keep modules loosely coupled"),
					"compatibility":   lines("### Compatibility", "", "- The system SHALL support the current and previous major versions of supported platforms"),
					"scalability":     lines("### Scalability", "", "- The system SHALL scale horizontally with growth in users and data"),
				},
				document.VocabTechnology: {
					"technology": "- **Technology**: [primary language and runtime]",
					"framework":  "- **Framework**: [application framework and why it fits]",
					"database":   "- **Database**: [storage engine and data access approach]",
					"api":        "- **API**: [API style and versioning policy]",
					"protocol":   "- **Protocol**: [transport used between components]",
					"stack":      "- **Stack**: [how the pieces above fit together]",
					"library":    "- **Library**: [key third-party libraries and their purpose]",
				},
				document.VocabNFRDesign: {
					"performance":     lines("### Performance", "", "- Caching and asynchronous processing keep latency within budget"),
					"security":        lines("### Security", "", "- External traffic is encrypted and every request is authenticated"),
					"scalability":     lines("### Scalability", "", "- Stateless services scale horizontally behind a load balancer"),
					"fault tolerance": lines("### Fault Tolerance", "", "- Retries with backoff and circuit breakers isolate failing dependencies"),
					"monitoring":      lines("### Monitoring", "", "- Metrics, logs and traces are collected for every service"),
					"error handling":  lines("### Error Handling", "", "- Errors are classified, logged with context and returned to callers with actionable messages"),
				},
				document.VocabErrors: {
					"fault tolerance": lines("### Fault Tolerance", "", "- Retries with backoff and circuit breakers isolate failing dependencies"),
					"error handling":  lines("### Error Handling Strategy", "", "- Errors are classified, logged with context and returned to callers with actionable messages"),
				},
			},
			document.LanguageZH: {
				document.VocabNFR: {
					"性能":   lines("### 性能需求", "", "- 常规负载下交互请求响应时间不超过 2 秒"),
					"安全":   lines("### 安全需求", "", "- 访问受保护数据前必须完成身份认证"),
					"可用性":  lines("### 可用性需求", "", "- 系统年可用率不低于 99.9%"),
					"可维护性": lines("### 可维护性需求", "", "- 模块保持低耦合并遵循编码规范"),
					"兼容性":  lines("### 兼容性需求", "", "- 支持主流平台的当前及上一个大版本"),
				},
				document.VocabTechnology: {
					"技术选型": "- **技术选型**: [主要语言与运行时]",
					"技术栈":  "- **技术栈**: [整体技术栈说明]",
					"框架选择": "- **框架选择**: [应用框架及选择理由]",
					"数据库":  "- **数据库**: [存储引擎与数据访问方式]",
					"API":  "- **API**: [接口风格与版本策略]",
					"协议":   "- **协议**: [组件间通信协议]",
				},
				document.VocabNFRDesign: {
					"性能设计": lines("### 性能设计", "", "- 通过缓存与异步处理控制延迟"),
					"安全设计": lines("### 安全设计", "", "- 外部流量全部加密，所有请求均需认证"),
					"可扩展性": lines("### 可扩展性", "", "- 无状态服务支持水平扩展"),
					"容错机制": lines("### 容错机制", "", "- 依赖故障时通过重试与熔断隔离影响"),
					"监控":   lines("### 监控", "", "- 采集所有服务的指标、日志与链路追踪"),
				},
				document.VocabErrors: {
					"容错机制": lines("### 容错机制", "", "- 依赖故障时通过重试与熔断隔离影响"),
				},
			},
		},
	}
}
