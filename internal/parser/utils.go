package parser

import (
	"fmt"
	"strings"
)

// UniqueHeaders 规范化表头：空表头命名为 "Unnamed: i"，重复表头追加 ".1"、".2"
func UniqueHeaders(raw []string) []string {
	out := make([]string, len(raw))
	used := make(map[string]bool, len(raw))
	next := make(map[string]int, len(raw))
	for i, h := range raw {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		name := h
		if used[name] {
			for n := max(next[h], 1); ; n++ {
				cand := fmt.Sprintf("%s.%d", h, n)
				if !used[cand] {
					name = cand
					next[h] = n + 1
					break
				}
			}
		}
		used[name] = true
		out[i] = name
	}
	return out
}

// TableFromRows 第一行为表头构建 RawTable；空字符串视为缺失，全空行跳过
func TableFromRows(rows [][]string) *RawTable {
	if len(rows) == 0 {
		return NewRawTable(nil, nil)
	}

	headers := UniqueHeaders(rows[0])
	width := len(headers)
	for _, r := range rows[1:] {
		width = max(width, len(r))
	}
	for i := len(headers); i < width; i++ {
		headers = append(headers, fmt.Sprintf("Unnamed: %d", i))
	}

	data := make([][]any, 0, len(rows)-1)
	for _, r := range rows[1:] {
		row := make([]any, width)
		blank := true
		for i, cell := range r {
			if strings.TrimSpace(cell) == "" {
				continue
			}
			row[i] = cell
			blank = false
		}
		if blank {
			continue
		}
		data = append(data, row)
	}
	return NewRawTable(headers, data)
}
