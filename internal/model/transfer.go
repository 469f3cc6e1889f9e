package model

import "time"

// 转院申请状态
const (
	TransferPending  = "pending"
	TransferApproved = "approved"
	TransferRejected = "rejected"
)

// TransferApplication 转院申请
type TransferApplication struct {
	ID                 uint64    `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID" json:"id"`
	ApplyNo            string    `gorm:"column:apply_no;type:varchar(32);uniqueIndex:uk_apply_no;not null;comment:申请单号" json:"applyNo"`
	UserID             *uint64   `gorm:"column:user_id;type:bigint;index:idx_transfer_user;comment:申请用户ID" json:"userId"`
	PatientName        string    `gorm:"column:patient_name;type:varchar(64);not null;comment:患者姓名" json:"patientName"`
	PatientIDCard      string    `gorm:"column:patient_id_card;type:varchar(32);comment:患者身份证" json:"patientIdCard"`
	PatientPhone       string    `gorm:"column:patient_phone;type:varchar(32);comment:患者电话" json:"patientPhone"`
	FromHospital       string    `gorm:"column:from_hospital;type:varchar(128);comment:转出医院" json:"fromHospital"`
	ToHospital         string    `gorm:"column:to_hospital;type:varchar(128);comment:转入医院" json:"toHospital"`
	ToHospitalID       *uint64   `gorm:"column:to_hospital_id;type:bigint;comment:转入医院ID" json:"toHospitalId"`
	ToInstitutionID    *uint64   `gorm:"column:to_institution_id;type:bigint;comment:转入康复机构ID" json:"toInstitutionId"`
	Disease            string    `gorm:"column:disease;type:varchar(128);comment:疾病" json:"disease"`
	DiseaseDescription string    `gorm:"column:disease_description;type:text;comment:病情描述" json:"diseaseDescription"`
	Reason             string    `gorm:"column:reason;type:text;comment:转院理由" json:"reason"`
	ExpectedCost       float64   `gorm:"column:expected_cost;type:numeric(14,2);default:0;comment:预计费用" json:"expectedCost"`
	Status             string    `gorm:"column:status;type:varchar(16);default:pending;comment:状态 pending/approved/rejected" json:"status"`
	AdminComment       string    `gorm:"column:admin_comment;type:text;comment:审核意见" json:"adminComment"`
	ApplyTime          time.Time `gorm:"column:apply_time;autoCreateTime;comment:申请时间" json:"applyTime"`
	CreatedAt          time.Time `gorm:"column:created_at;autoCreateTime;comment:创建时间" json:"createdAt"`
	UpdatedAt          time.Time `gorm:"column:updated_at;autoUpdateTime;comment:更新时间" json:"updatedAt"`
}

func (TransferApplication) TableName() string { return "transfer_applications" }

// TransferStatusText 状态中文名
func TransferStatusText(status string) string {
	switch status {
	case TransferPending:
		return "待审核"
	case TransferApproved:
		return "已批准"
	case TransferRejected:
		return "已拒绝"
	}
	return status
}
