// Package xtee 是请求流水线与缓存存储之间的适配层。
//
// 它只做两件事：
//
//  1. 复制输出流。[Capture] 把处理器写出的每个字节同时交给调用方与内存缓冲，
//     缓冲超过上限后放弃捕获，调用方的输出不受影响。
//  2. 根据处理器的结束信号决定捕获的去向。结果就绪时写入响应缓存；
//     结果延后时只保存请求快照（[Recorder] 记录的输入），响应缓存保持不变；
//     其余情况丢弃捕获。
//
// 没有显式的就绪信号，捕获永远不会成为缓存条目，未完成的结果不会被后续请求读到。
//
// 存储错误不会使请求失败：读取失败按未命中处理，写入失败只记录日志。
package xtee
