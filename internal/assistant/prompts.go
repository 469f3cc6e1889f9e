package assistant

import "strings"

// Persona 助手人设
type Persona string

const (
	PersonaFraudAnalyst    Persona = "fraud_analyst"
	PersonaTransferAdvisor Persona = "transfer_advisor"
)

const fraudAnalystPrompt = `你是一位专业的医保欺诈检测AI助手。你的职责是：
1. 分析医疗费用数据，识别潜在的欺诈行为
2. 检测异常模式，如虚假住院、过度医疗、重复收费等
3. 提供详细的风险评估报告
4. 给出专业的建议和处理方案

请用专业、准确、简洁的语言回答用户的问题。`

const transferAdvisorPrompt = `你是一位专业的转院建议AI助手。你的职责是：
1. 根据用户的病情、需求和预算，推荐合适的医院
2. 分析医院的专业特长、评价、价格等因素
3. 提供详细的转院建议和医院对比
4. 回答用户关于转院流程、费用、注意事项等问题

请用专业、准确、简洁的语言回答用户的问题。如果用户提供了医院列表，请基于这些医院信息给出建议。`

// PersonaFor 普通用户使用转院顾问，其余角色使用欺诈分析
func PersonaFor(role string) Persona {
	if role == "user" {
		return PersonaTransferAdvisor
	}
	return PersonaFraudAnalyst
}

// SystemPrompt 人设对应的系统提示词
func (p Persona) SystemPrompt() string {
	if p == PersonaTransferAdvisor {
		return transferAdvisorPrompt
	}
	return fraudAnalystPrompt
}

const fallbackNotice = "⚠️ **注意**：AI服务暂时不可用，以下是模拟响应。\n\n"

const riskTemplate = `根据您提供的数据，我检测到以下潜在风险：

1. **异常费用模式**：检测到多笔高额费用集中在短时间内，可能存在虚假住院或过度医疗的情况。

2. **重复收费风险**：发现部分项目存在重复计费的可能，建议进一步核实。

3. **建议措施**：
   - 对相关病例进行详细审核
   - 联系医疗机构核实具体情况
   - 必要时启动调查程序

风险等级：中等
建议优先级：高`

const analysisTemplate = `我已经对相关数据进行了分析：

**数据分析结果**：
- 费用趋势：较上月增长15%，需要关注
- 风险事件：发现3起潜在风险事件
- 异常模式：检测到2个异常费用模式

**风险评估**：
- 高风险：1起
- 中风险：2起
- 低风险：0起

**建议**：
建议优先处理高风险事件，并加强对相关医疗机构的监管。`

const recommendTemplate = `根据您的需求，我为您推荐以下医院：

**推荐医院**：
1. **北京协和医院** - 三级医院，神经科、心内科、骨科专业，评分4.8分
2. **上海瑞金医院** - 三级医院，心内科、神经科专业，评分4.7分
3. **广州中山医院** - 三级医院，神经科、康复科专业，评分4.6分

**选择建议**：
- 如需神经科治疗，推荐北京协和医院或广州中山医院
- 如需心内科治疗，推荐北京协和医院或上海瑞金医院
- 如需康复治疗，推荐广州中山医院

**转院流程**：
1. 填写转院申请表单
2. 提交申请等待审核
3. 审核通过后办理转院手续`

const capabilityTemplate = `我是医保欺诈检测AI助手。我可以帮助您：
- 分析医疗费用数据
- 识别潜在的欺诈行为
- 评估风险等级
- 提供处理建议
- 推荐合适的医院（普通用户）

请告诉我您需要分析的具体问题或数据。`

var templateRules = []struct {
	keywords []string
	text     string
}{
	{[]string{"欺诈", "风险", "fraud", "risk"}, riskTemplate},
	{[]string{"分析", "评估", "analysis", "analyze", "assess"}, analysisTemplate},
	{[]string{"医院", "转院", "推荐", "hospital", "transfer", "recommend"}, recommendTemplate},
}

// MockAnswer 按关键词选择模拟回复。fallback 为 true 时加不可用提示，reason 为降级原因
func MockAnswer(message string, fallback bool, reason string) string {
	var b strings.Builder
	if fallback {
		b.WriteString(fallbackNotice)
	}
	if reason != "" {
		b.WriteString("\n\n*" + reason + "*\n\n")
	}

	lower := strings.ToLower(message)
	text := capabilityTemplate
	for _, rule := range templateRules {
		if containsAny(lower, rule.keywords) {
			text = rule.text
			break
		}
	}
	b.WriteString(text)
	return b.String()
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
