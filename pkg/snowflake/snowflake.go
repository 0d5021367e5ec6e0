package snowflake

import (
	"fmt"
	"time"

	"github.com/sony/sonyflake/v2"
	"github.com/spf13/viper"
)

var node *sonyflake.Sonyflake

// New 按配置创建 sonyflake 节点，起始时间格式为 2006-01-02
func New(cfg *viper.Viper) (*sonyflake.Sonyflake, error) {
	st, err := time.Parse(time.DateOnly, cfg.GetString("snowflake.start_time"))
	if err != nil {
		return nil, fmt.Errorf("parse start time failed, err:%w", err)
	}
	machineID := cfg.GetInt("snowflake.machine_id")
	return sonyflake.New(sonyflake.Settings{
		StartTime: st,
		MachineID: func() (int, error) {
			return machineID, nil
		},
		CheckMachineID: func(int) bool { return true },
	})
}

// MustInit 初始化全局节点，用于生成评测编号
func MustInit(cfg *viper.Viper) {
	n, err := New(cfg)
	if err != nil {
		panic(fmt.Errorf("init sonyflake failed, err:%w", err))
	}
	node = n
}

// NextID 生成下一个评测编号；未初始化时返回 0，仅用于日志关联
func NextID() (int64, error) {
	if node == nil {
		return 0, nil
	}
	return node.NextID()
}
