package schema

import "github.com/vodworks/catalog-backend/internal/types"

// Tenant definitions. Column order here is delivery order: the export
// formatter writes columns exactly as declared.

func henanMobile() *TenantSchema {
	return &TenantSchema{
		Code: "henan_mobile",
		Name: "河南移动",

		HeaderColumns: []HeaderColumn{
			IdentityColumn{Col: "剧头id", Field: IdentityID},
			IdentityColumn{Col: "剧集名称", Field: IdentityName},
			SourceColumn{Col: "作者列表", Source: types.FieldAuthor, Separator: ";"},
			SourceColumn{Col: "清晰度", Source: types.FieldVideoQuality, Default: "高清"},
			SourceColumn{Col: "语言", Source: types.FieldLanguageHenan, Fallbacks: []string{types.FieldLanguage}, Default: "国语"},
			SourceColumn{Col: "主演", Source: types.FieldCastMembers, Separator: ";"},
			SourceColumn{Col: "内容类型", Source: types.FieldCategoryLevel1Henan, Fallbacks: []string{types.FieldCategoryLevel1}},
			SourceColumn{Col: "上映年份", Source: types.FieldProductionYear, Format: FormatInt},
			SourceColumn{Col: "关键字", Source: types.FieldKeywords, Separator: ";"},
			SourceColumn{Col: "评分", Source: types.FieldRating, Default: 8},
			SourceColumn{Col: "推荐语", Source: types.FieldRecommendation, Fallbacks: []string{types.FieldSynopsis}, MaxLength: 50},
			SourceColumn{Col: "总集数", Source: types.FieldEpisodeCount, Format: FormatInt},
			ProductCategoryColumn{Col: "产品分类"},
			ImageColumn{Col: "竖图", Slot: "vertical"},
			SourceColumn{Col: "描述", Source: types.FieldSynopsis, MaxLength: 200},
			ImageColumn{Col: "横图", Slot: "horizontal"},
			SourceColumn{Col: "版权", Source: types.FieldUpstreamLicensor},
			SourceColumn{Col: "二级分类", Source: types.FieldCategoryLevel2Henan, Fallbacks: []string{types.FieldCategoryLevel2}},
		},

		EpisodeColumns: []EpisodeColumn{
			IdentityColumn{Col: "子集id", Field: IdentityID},
			IdentityColumn{Col: "节目名称", Field: IdentityName},
			MediaURLColumn{Col: "媒体拉取地址"},
			LiteralColumn{Col: "媒体类型", Value: "视频"},
			LiteralColumn{Col: "编码格式", Value: "H.264"},
			EpisodeNumColumn{Col: "集数"},
			DurationColumn{Col: "时长", Style: DurationPacked},
			FileSizeColumn{Col: "文件大小"},
		},

		ImageURLTemplates: map[string]string{
			"vertical":   "http://images.vod.hnyd.cn/poster/{abbr}_v.jpg",
			"horizontal": "http://images.vod.hnyd.cn/poster/{abbr}_h.jpg",
		},
		MediaURLTemplate: "http://media.vod.hnyd.cn/{dir}/{abbr}/{abbr}{ep}.ts",

		ContentDirLookup: Lookup{
			Entries: []LookupEntry{
				{Match: "电视剧", Value: "dsj"},
				{Match: "网络剧", Value: "dsj"},
				{Match: "电影", Value: "dy"},
				{Match: "动漫", Value: "dm"},
				{Match: "动画", Value: "dm"},
				{Match: "少儿", Value: "se"},
				{Match: "综艺", Value: "zy"},
				{Match: "纪录", Value: "jlp"},
			},
			Default: "qt",
		},
		ProductCategoryLookup: Lookup{
			Entries: []LookupEntry{
				{Match: "电视剧", Value: "电视剧"},
				{Match: "网络剧", Value: "电视剧"},
				{Match: "电影", Value: "电影"},
				{Match: "动漫", Value: "动漫"},
				{Match: "动画", Value: "动漫"},
				{Match: "少儿", Value: "少儿"},
				{Match: "综艺", Value: "综艺"},
				{Match: "纪录", Value: "纪录片"},
			},
			Default: "其他",
		},

		Export: ExportLayout{
			HeaderSheet:  "剧头",
			EpisodeSheet: "子集",
		},
	}
}

func shandongMobile() *TenantSchema {
	return &TenantSchema{
		Code: "shandong_mobile",
		Name: "山东移动",

		HeaderColumns: []HeaderColumn{
			IdentityColumn{Col: "content_id", Field: IdentityID},
			IdentityColumn{Col: "content_name", Field: IdentityName},
			AbbrColumn{Col: "content_code"},
			GenreColumn{Col: "genre"},
			SourceColumn{Col: "category", Source: types.FieldCategoryLevel2Shandong, Fallbacks: []string{types.FieldCategoryLevel2}},
			MultiEpisodeColumn{Col: "is_multi_episode"},
			SourceColumn{Col: "episode_count", Source: types.FieldEpisodeCount, Format: FormatInt},
			TotalDurationColumn{Col: "total_duration"},
			EpisodeDurationTotalColumn{Col: "total_episodes_duration"},
			SourceColumn{Col: "director", Source: types.FieldDirector, Separator: "/"},
			SourceColumn{Col: "actors", Source: types.FieldCastMembers, Separator: "/"},
			SourceColumn{Col: "year", Source: types.FieldProductionYear, Format: FormatInt},
			SourceColumn{Col: "region", Source: types.FieldProductionRegion},
			SourceColumn{Col: "language", Source: types.FieldLanguage},
			SourceColumn{Col: "description", Source: types.FieldSynopsis, MaxLength: 500},
			SourceColumn{Col: "license_no", Source: types.FieldLicenseNumber},
			SourceColumn{Col: "copyright_start", Source: types.FieldCopyrightStartDate, Format: FormatDateCompact},
			SourceColumn{Col: "copyright_end", Source: types.FieldCopyrightEndDate, Format: FormatDateCompact},
			SourceColumn{Col: "online_time", Source: types.FieldPremiereDate, Format: FormatDatetimeCompact},
			ImageColumn{Col: "poster_url", Slot: "vertical"},
			ImageColumn{Col: "still_url", Slot: "horizontal"},
		},

		EpisodeColumns: []EpisodeColumn{
			IdentityColumn{Col: "episode_id", Field: IdentityID},
			IdentityColumn{Col: "episode_name", Field: IdentityName},
			EpisodeNumColumn{Col: "episode_num"},
			MediaURLColumn{Col: "media_url"},
			DurationColumn{Col: "duration_minutes", Style: DurationMinutes},
			FileSizeColumn{Col: "file_size"},
			ChecksumColumn{Col: "md5"},
		},

		ImageURLTemplates: map[string]string{
			"vertical":   "http://img.vod.sdmcc.cn/{abbr}/poster.jpg",
			"horizontal": "http://img.vod.sdmcc.cn/{abbr}/still.jpg",
		},
		MediaURLTemplate: "http://media.vod.sdmcc.cn/{dir}/{abbr}/{abbr}{ep}.ts",

		ContentDirLookup: Lookup{
			Entries: []LookupEntry{
				{Match: "电视剧", Value: "tv"},
				{Match: "电影", Value: "movie"},
				{Match: "动漫", Value: "anime"},
				{Match: "动画", Value: "anime"},
				{Match: "综艺", Value: "variety"},
				{Match: "纪录", Value: "doc"},
			},
			Default: "misc",
		},
		GenreLookup: Lookup{
			Entries: []LookupEntry{
				{Match: "电视剧", Value: "剧集"},
				{Match: "网络剧", Value: "剧集"},
				{Match: "电影", Value: "电影"},
				{Match: "动漫", Value: "动画"},
				{Match: "动画", Value: "动画"},
				{Match: "综艺", Value: "综艺"},
				{Match: "纪录", Value: "纪录片"},
			},
			Default: "其他",
		},

		Export: ExportLayout{
			HeaderSheet:  "剧头",
			EpisodeSheet: "子集",
		},
	}
}

func jiangsuNewMedia() *TenantSchema {
	return &TenantSchema{
		Code: "jiangsu_newmedia",
		Name: "江苏新媒体",

		HeaderColumns: []HeaderColumn{
			SequenceColumn{Col: "vod_no"},
			LiteralColumn{Col: "sId", Value: ""},
			IdentityColumn{Col: "name", Field: IdentityName},
			SourceColumn{Col: "type", Source: types.FieldCategoryLevel1, MapLevel1: true},
			SourceColumn{Col: "director", Source: types.FieldDirector, Separator: "/"},
			SourceColumn{Col: "actor", Source: types.FieldCastMembers, Separator: "/"},
			SourceColumn{Col: "year", Source: types.FieldProductionYear, Format: FormatInt},
			SourceColumn{Col: "area", Source: types.FieldProductionRegion},
			SourceColumn{Col: "language", Source: types.FieldLanguage},
			SourceColumn{Col: "keyword", Source: types.FieldKeywords, Separator: " "},
			SourceColumn{Col: "desc", Source: types.FieldSynopsis, MaxLength: 300},
			SourceColumn{Col: "totalCount", Source: types.FieldEpisodeCount, Format: FormatInt},
			TotalDurationColumn{Col: "duration"},
			SourceColumn{Col: "copyright", Source: types.FieldUpstreamLicensor},
			SourceColumn{Col: "onlineTime", Source: types.FieldPremiereDate, Format: FormatDatetimeFull},
		},

		EpisodeColumns: []EpisodeColumn{
			SequenceColumn{Col: "vod_info_no"},
			LiteralColumn{Col: "pId", Value: ""},
			IdentityColumn{Col: "name", Field: IdentityName},
			EpisodeNumColumn{Col: "number"},
			MediaURLColumn{Col: "url"},
			DurationColumn{Col: "playTime", Style: DurationColons},
		},

		ImageURLTemplates: map[string]string{
			"vertical":   "http://pic.vod.jsnm.tv/{abbr}/v.jpg",
			"horizontal": "http://pic.vod.jsnm.tv/{abbr}/h.jpg",
		},
		MediaURLTemplate: "http://ftp.vod.jsnm.tv/{dir}/{abbr}/{abbr}{ep}.ts",

		ContentDirLookup: Lookup{
			Entries: []LookupEntry{
				{Match: "电视剧", Value: "dianshiju"},
				{Match: "电影", Value: "dianying"},
				{Match: "动漫", Value: "dongman"},
				{Match: "动画", Value: "dongman"},
				{Match: "综艺", Value: "zongyi"},
			},
			Default: "qita",
		},
		CategoryLevel1Lookup: Lookup{
			Entries: []LookupEntry{
				{Match: "电视剧", Value: "连续剧"},
				{Match: "网络剧", Value: "连续剧"},
				{Match: "电影", Value: "电影"},
				{Match: "动漫", Value: "动漫"},
				{Match: "动画", Value: "动漫"},
				{Match: "综艺", Value: "综艺"},
				{Match: "纪录", Value: "纪实"},
			},
		},

		Export: ExportLayout{
			HeaderSheet:  "节目单",
			EpisodeSheet: "子集单",
			PictureSheet: "图片单",
			HeaderLabels: map[string]string{
				"vod_no":     "序号",
				"sId":        "节目ID",
				"name":       "节目名称",
				"type":       "节目类型",
				"director":   "导演",
				"actor":      "主演",
				"year":       "年份",
				"area":       "地区",
				"language":   "语言",
				"keyword":    "关键词",
				"desc":       "简介",
				"totalCount": "总集数",
				"duration":   "时长(分钟)",
				"copyright":  "版权方",
				"onlineTime": "上线时间",
			},
			EpisodeLabels: map[string]string{
				"vod_info_no": "序号",
				"pId":         "子集ID",
				"name":        "子集名称",
				"number":      "集数",
				"url":         "播放地址",
				"playTime":    "时长",
			},
			PictureLabels: map[string]string{
				"picture_no": "序号",
				"sId":        "节目ID",
				"name":       "节目名称",
				"posterUrl":  "竖图",
				"stillUrl":   "横图",
			},
			ColWidths: map[string]float64{
				"desc":       50,
				"url":        45,
				"name":       25,
				"keyword":    20,
				"onlineTime": 20,
				"posterUrl":  45,
				"stillUrl":   45,
			},
			PictureColumns: []HeaderColumn{
				SequenceColumn{Col: "picture_no"},
				LiteralColumn{Col: "sId", Value: ""},
				IdentityColumn{Col: "name", Field: IdentityName},
				ImageColumn{Col: "posterUrl", Slot: "vertical"},
				ImageColumn{Col: "stillUrl", Slot: "horizontal"},
			},
		},
	}
}
