// Package xid 为请求分配短小、可排序的唯一 ID，基于 Sonyflake 算法。
//
// 每个请求在进入管道时获得一个 ID，用于日志关联、统计记录以及
// 延后请求（pending request）的索引键。
//
// # ID 结构
//
//	39 bits - 时间戳（10ms 为单位）
//	 8 bits - 序列号（同一时间单位内最多 256 个 ID）
//	16 bits - 机器 ID
//
// 字符串形式使用 base36 编码，长度 12-13 个字符。
//
// # 机器 ID
//
// 默认按 XSERVE_MACHINE_ID、POD_NAME、HOSTNAME、os.Hostname() 的顺序获取，
// 最后回退到私有 IPv4 的低 16 位。多实例部署时建议显式设置 XSERVE_MACHINE_ID。
//
// # 用法
//
//	gen, err := xid.NewGenerator()
//	if err != nil {
//	    return err
//	}
//	id, err := gen.NewString()
package xid
