package store

import (
	"context"
	"fmt"

	"MedGuard/internal/model"
)

// seedSet 一张表及其初始数据
type seedSet struct {
	model interface{}
	rows  interface{}
}

// Seed 逐表检查：行数为 0 才写入，已有数据的表保持不变。用户由认证模块初始化（需要哈希密码）
func (s *Store) Seed(ctx context.Context) error {
	for _, set := range seedData() {
		var n int64
		if err := s.db.WithContext(ctx).Model(set.model).Count(&n).Error; err != nil {
			return fmt.Errorf("统计 %T 行数失败: %w", set.model, err)
		}
		if n > 0 {
			continue
		}
		if err := s.db.WithContext(ctx).Create(set.rows).Error; err != nil {
			return fmt.Errorf("写入 %T 初始数据失败: %w", set.model, err)
		}
		s.logger.WithField("table", fmt.Sprintf("%T", set.model)).Info("初始数据插入成功")
	}
	return nil
}

func seedData() []seedSet {
	return []seedSet{
		{&model.DRGPolicy{}, &[]model.DRGPolicy{
			{DRGCode: "MDC01", DRGName: "颅脑损伤", Diagnosis: "颅骨骨折、脑震荡", PaymentStandard: 32500, EffectiveDate: "2025-01-01", Status: 1},
			{DRGCode: "MDC02", DRGName: "神经系统疾病", Diagnosis: "脑出血、脑梗死", PaymentStandard: 28800, EffectiveDate: "2025-01-01", Status: 1},
			{DRGCode: "MDC03", DRGName: "循环系统疾病", Diagnosis: "心肌梗死、冠心病", PaymentStandard: 25600, EffectiveDate: "2025-01-01", Status: 1},
			{DRGCode: "MDC04", DRGName: "呼吸系统疾病", Diagnosis: "肺炎、慢性阻塞性肺疾病", PaymentStandard: 18300, EffectiveDate: "2025-01-01", Status: 1},
			{DRGCode: "MDC05", DRGName: "消化系统疾病", Diagnosis: "胃溃疡、阑尾炎", PaymentStandard: 15700, EffectiveDate: "2025-01-01", Status: 1},
		}},
		{&model.RehabInstitution{}, &[]model.RehabInstitution{
			{Name: "北京康复医院", Level: "三级", BedCount: 500, Specialty: "神经康复、骨科康复", Status: model.InstitutionOpen, Rating: 4.8, PriceLevel: model.PriceHigh, Address: "北京市石景山区八大处西下庄", Phone: "010-56981234", Description: "以神经康复和骨科康复见长的三级康复专科医院"},
			{Name: "上海康复医学中心", Level: "三级", BedCount: 450, Specialty: "心肺康复、老年康复", Status: model.InstitutionOpen, Rating: 4.6, PriceLevel: model.PriceHigh, Address: "上海市徐汇区斜土路", Phone: "021-64181234", Description: "心肺康复与老年康复综合中心"},
			{Name: "广州康复护理院", Level: "二级", BedCount: 300, Specialty: "骨科康复、康复护理", Status: model.InstitutionOpen, Rating: 4.3, PriceLevel: model.PriceMedium, Address: "广州市越秀区东风中路", Phone: "020-83821234", Description: "骨科术后康复与长期护理"},
			{Name: "深圳康复治疗中心", Level: "二级", BedCount: 280, Specialty: "神经康复、儿童康复", Status: model.InstitutionClosed, Rating: 4.0, PriceLevel: model.PriceLow, Address: "深圳市福田区笋岗西路", Phone: "0755-83361234", Description: "神经康复与儿童康复"},
		}},
		{&model.Hospital{}, &[]model.Hospital{
			{Name: "北京协和医院", Level: "三级甲等", Specialty: "神经科、心内科、骨科", Address: "北京市东城区帅府园1号", Phone: "010-69151188", Description: "综合实力领先的大型三甲医院", AverageCost: 48000, Status: model.InstitutionOpen},
			{Name: "上海瑞金医院", Level: "三级甲等", Specialty: "心内科、神经科", Address: "上海市黄浦区瑞金二路197号", Phone: "021-64370045", Description: "心血管与神经疾病诊治中心", AverageCost: 45000, Status: model.InstitutionOpen},
			{Name: "广州中山医院", Level: "三级甲等", Specialty: "神经科、康复科", Address: "广州市越秀区中山二路58号", Phone: "020-28823388", Description: "神经与康复学科优势明显", AverageCost: 38000, Status: model.InstitutionOpen},
			{Name: "深圳人民医院", Level: "三级甲等", Specialty: "骨科、呼吸科", Address: "深圳市罗湖区东门北路1017号", Phone: "0755-25533018", Description: "区域医疗中心", AverageCost: 36000, Status: model.InstitutionOpen},
			{Name: "成都华西医院", Level: "三级甲等", Specialty: "综合、康复科、心内科", Address: "成都市武侯区国学巷37号", Phone: "028-85422114", Description: "西南地区疑难重症诊治中心", AverageCost: 42000, Status: model.InstitutionOpen},
		}},
		{&model.TransferApplication{}, &[]model.TransferApplication{
			{ApplyNo: "TA20250101", PatientName: "张三", FromHospital: "北京协和医院", ToHospital: "北京康复医院", Disease: "脑出血", Status: model.TransferPending},
			{ApplyNo: "TA20250102", PatientName: "李四", FromHospital: "上海瑞金医院", ToHospital: "上海康复医学中心", Disease: "心肌梗死", Status: model.TransferPending},
			{ApplyNo: "TA20250103", PatientName: "王五", FromHospital: "广州中山医院", ToHospital: "广州康复护理院", Disease: "脑梗死", Status: model.TransferPending},
		}},
		{&model.RiskEvent{}, &[]model.RiskEvent{
			{EventID: "RE20250101", PatientName: "赵六", Hospital: "北京协和医院", RiskType: "虚假住院", RiskLevel: model.RiskHigh, HandleStatus: model.HandleDone},
			{EventID: "RE20250102", PatientName: "钱七", Hospital: "上海瑞金医院", RiskType: "过度医疗", RiskLevel: model.RiskMedium, HandleStatus: model.HandlePending},
			{EventID: "RE20250103", PatientName: "孙八", Hospital: "广州中山医院", RiskType: "重复收费", RiskLevel: model.RiskLow, HandleStatus: model.HandlePending},
			{EventID: "RE20250104", PatientName: "周九", Hospital: "深圳人民医院", RiskType: "虚假报销", RiskLevel: model.RiskHigh, HandleStatus: model.HandleDone},
		}},
		{&model.Warning{}, &[]model.Warning{
			{WarningID: "WR20250101", Hospital: "北京协和医院", Type: "欺诈风险", Amount: 12500, Status: model.HandlePending},
			{WarningID: "WR20250102", Hospital: "上海瑞金医院", Type: "异常费用", Amount: 8300, Status: model.HandleDone},
			{WarningID: "WR20250103", Hospital: "广州中山医院", Type: "虚假住院", Amount: 25600, Status: model.HandlePending},
			{WarningID: "WR20250104", Hospital: "深圳人民医院", Type: "异常费用", Amount: 5800, Status: model.HandlePending},
			{WarningID: "WR20250105", Hospital: "成都华西医院", Type: "欺诈风险", Amount: 18200, Status: model.HandleDone},
		}},
	}
}
